// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// onnx_convert converts a model, in the YAML text format, to another version of the default
// operator set.
//
// Usage:
//
//	onnx_convert -target=19 [-output=converted.yaml] [-infer] [-bind=batch=8] [-strict] [-summary] model.yaml
package main

import (
	"flag"
	"os"

	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/ir/irtext"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagTarget = flag.Int64("target", 0, "Opset version of the default domain to convert the model to. Required.")
	flagOutput = flag.String("output", "", "Path where to write the converted model. If empty it is written to the standard output.")
	flagInfer  = flag.Bool("infer", false, "Run shape inference on the converted graph.")
	flagStrict = flag.Bool("strict", false,
		"Fail on operators unknown to the converter, and on shape inference failures. "+
			"Otherwise unknown operators are assumed unchanged and inference failures are only logged.")
	flagBind    = flag.String("bind", "", "Comma-separated list of symbolic dimensions of the graph inputs to resolve, e.g.: \"batch=8,seq=128\".")
	flagSummary = flag.Bool("summary", false, "Display a summary of the conversion, and the converted nodes.")
	flagNoColor = flag.Bool("no_color", false, "Disable colors in the summary.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		klog.Errorf("Missing model file to convert. See 'onnx_convert -help'")
		os.Exit(1)
	}
	if len(args) > 1 {
		klog.Errorf("Too many arguments. See 'onnx_convert -help'.")
		os.Exit(1)
	}
	if *flagTarget <= 0 {
		klog.Errorf("Flag -target is required and must be a positive opset version.")
		os.Exit(1)
	}
	if *flagNoColor {
		disableColors()
	}

	bindings, err := shapes.ParseAxisBindings(*flagBind)
	if err != nil {
		klog.Fatalf("Invalid -bind: %v", err)
	}
	model := must.M1(irtext.ReadFile(args[0]))
	report, err := Convert(model, Options{Target: *flagTarget, Infer: *flagInfer, Strict: *flagStrict, Bindings: bindings})
	if err != nil {
		klog.Fatalf("Failed to convert %q: %+v", args[0], err)
	}
	if *flagSummary {
		Summary(os.Stderr, report)
		Nodes(os.Stderr, model.Graph)
	}
	if *flagOutput == "" {
		_ = must.M1(os.Stdout.Write(must.M1(irtext.Marshal(model))))
		return
	}
	must.M(irtext.WriteFile(*flagOutput, model))
	klog.V(1).Infof("Converted model written to %q", *flagOutput)
}
