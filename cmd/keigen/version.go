package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// hostFeatures lists the SIMD extensions the host reports.
func hostFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE2, "sse2")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "keigen %s\n", version)
	fmt.Fprintf(w, "Host: %s/%s, %d CPUs\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	features := hostFeatures()
	if len(features) == 0 {
		fmt.Fprintln(w, "SIMD: none detected")
		return
	}
	fmt.Fprintf(w, "SIMD: %s\n", strings.Join(features, " "))
}
