// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/db47h/logsim"
	"gopkg.in/yaml.v3"
)

type signalDoc struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Values string `json:"values" yaml:"values" toml:"values"`
}

type traceDoc struct {
	Source  string      `json:"source" yaml:"source" toml:"source"`
	Ticks   int         `json:"ticks" yaml:"ticks" toml:"ticks"`
	Signals []signalDoc `json:"signals" yaml:"signals" toml:"signals"`

	c *logsim.Circuit
}

func newTraceDoc(source string, c *logsim.Circuit) *traceDoc {
	doc := &traceDoc{Source: source, Ticks: c.Network.Ticks(), c: c}
	for _, p := range c.Monitors.Points() {
		s, _ := c.Monitors.Signals(p.Device, p.Pin)
		var b strings.Builder
		for _, v := range s {
			if v {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		doc.Signals = append(doc.Signals, signalDoc{
			Name:   c.Devices.SignalName(p.Device, p.Pin),
			Values: b.String(),
		})
	}
	return doc
}

var encoders = map[string]func(w io.Writer, doc *traceDoc) error{
	"text": encodeText,
	"json": func(w io.Writer, doc *traceDoc) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
	"yaml": func(w io.Writer, doc *traceDoc) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	},
	"toml": func(w io.Writer, doc *traceDoc) error {
		return toml.NewEncoder(w).Encode(doc)
	},
}

func encodeText(w io.Writer, doc *traceDoc) error {
	var b strings.Builder
	if err := doc.c.Monitors.Waveform(&b); err != nil {
		return err
	}
	out := b.String()
	if f, ok := w.(*os.File); ok && colorize(f) {
		lines := strings.SplitAfter(out, "\n")
		for i, l := range lines {
			if j := strings.Index(l, " : "); j >= 0 {
				wave := strings.ReplaceAll(l[j+3:], "-", ansiGreen+"-"+ansiReset)
				lines[i] = l[:j+3] + wave
			}
		}
		out = strings.Join(lines, "")
	}
	_, err := io.WriteString(w, out)
	return err
}
