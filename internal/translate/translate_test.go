// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package translate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestError(t *testing.T) {
	SetLanguage(language.AmericanEnglish)
	for _, msg := range []string{
		"network oscillates",
		"50% done",
		"maximum number of inputs is 16",
	} {
		assert.Equal(t, msg, Error(errors.New(msg)))
	}
	assert.Equal(t, "tick 3: network oscillates",
		Error(errors.Wrap(errors.New("network oscillates"), "tick 3")))
}
