// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
)

// Summary prints a table comparing the model before and after conversion.
func Summary(w io.Writer, report *Report) {
	fmt.Fprintln(w, titleStyle.Render("Summary"))
	table := newPlainTable(true, lipgloss.Right, lipgloss.Left)
	table.Headers("", "before", "after")
	table.Row("graph", report.Graph, report.Graph)
	table.Row("opset", report.Initial.String(), report.Target.String())
	table.Row("# nodes", humanize.Comma(int64(report.NodesBefore)), humanize.Comma(int64(report.NodesAfter)))
	table.Row("# initializers",
		humanize.Comma(int64(report.NumInitializers[0])), humanize.Comma(int64(report.NumInitializers[1])))
	table.Row("initializers size",
		humanize.Bytes(uint64(report.InitializersSize[0])), humanize.Bytes(uint64(report.InitializersSize[1])))
	if report.Bindings != "" {
		table.Row("axis bindings", "", report.Bindings)
	}
	if report.InferenceRan {
		table.Row("inference failures", "", humanize.Comma(int64(report.NumInferenceFailures)))
	}
	fmt.Fprintln(w, table.Render())
}

// Nodes prints one row per node of the graph with its inputs and inferred outputs. Nodes with an
// output whose type is unknown are highlighted.
func Nodes(w io.Writer, g *ir.Graph) {
	fmt.Fprintln(w, titleStyle.Render("Nodes"))
	table := newPlainTableWithReds(true, lipgloss.Right, lipgloss.Left)
	table.Table.Headers("#", "Op", "Attributes", "Inputs", "Outputs")
	for ii, node := range g.Nodes() {
		var attrs []string
		for _, name := range node.AttributeNames() {
			attr, _ := node.Attribute(name)
			attrs = append(attrs, fmt.Sprintf("%s=%s", name, attr))
		}
		var inputs []string
		for _, v := range node.Inputs() {
			inputs = append(inputs, v.String())
		}
		var outputs []string
		unknown := false
		for _, v := range node.Outputs() {
			if !v.Shape().Ok() {
				unknown = true
				outputs = append(outputs, v.String())
				continue
			}
			outputs = append(outputs, fmt.Sprintf("%s: %s", v, v.Shape()))
		}
		table.Row(unknown, humanize.Comma(int64(ii)), string(node.Kind()),
			strings.Join(attrs, ", "), strings.Join(inputs, ", "), strings.Join(outputs, ", "))
	}
	fmt.Fprintln(w, table.Table.Render())
}
