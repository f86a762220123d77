// Command snekc is the Snek compiler's CLI: it reads a source file,
// compiles it to x86-64 assembly, and writes that assembly to an
// output path. With --compile, it additionally pipes the assembly to
// cc exactly as teacher's math-compiler main.go piped to gcc, except
// the link line also names cmd/snekruntime's prebuilt c-archive,
// since the emitted code calls snek_error/snek_print/snek_try_gc that
// only that archive defines. Producing that archive, and the final
// link itself, are the "external assembler/linker" thin collaborator
// spec.md §1 places out of scope; this command assumes the archive
// already exists at --runtime-archive and only documents how to build
// it, rather than building it itself.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/snek-lang/snekc/compiler"
	"github.com/snek-lang/snekc/internal/snekrt"
	"github.com/snek-lang/snekc/parser"
)

var command = &cobra.Command{
	Use:  "snekc input-path output-path",
	Args: cobra.ExactArgs(2),
	Run:  run,
}

func init() {
	command.PersistentFlags().Bool("debug", false, "insert debug \"stuff\" in the generated output")
	command.PersistentFlags().Bool("compile", false, "compile the emitted assembly via cc")
	command.PersistentFlags().Bool("run", false, "run the binary, post-compile")
	command.PersistentFlags().StringP("program", "p", "a.out", "the binary to write, with --compile")
	command.PersistentFlags().IntP("heap-size", "H", snekrt.DefaultHeapWords, "heap size, in words, passed to the binary with --run")
	command.PersistentFlags().String("runtime-archive", "cmd/snekruntime/snekruntime.a", "path to cmd/snekruntime's prebuilt c-archive, built with go build -buildmode=c-archive")
}

func run(cmd *cobra.Command, args []string) {
	inputPath, outputPath := args[0], args[1]

	debug, _ := cmd.PersistentFlags().GetBool("debug")
	doCompile, _ := cmd.PersistentFlags().GetBool("compile")
	doRun, _ := cmd.PersistentFlags().GetBool("run")
	program, _ := cmd.PersistentFlags().GetString("program")
	heapSize, _ := cmd.PersistentFlags().GetInt("heap-size")
	runtimeArchive, _ := cmd.PersistentFlags().GetString("runtime-archive")

	// --run implies --compile, same as teacher's main.go.
	if doRun {
		doCompile = true
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing %s: %s\n", inputPath, err)
		os.Exit(1)
	}

	comp := compiler.New(prog)
	comp.SetDebug(debug)

	out, err := comp.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error compiling %s: %s\n", inputPath, err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !doCompile {
		return
	}

	if err := assemble(out, program, runtimeArchive); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if doRun {
		exe := exec.Command(program, fmt.Sprintf("%d", heapSize))
		exe.Stdout = os.Stdout
		exe.Stderr = os.Stderr
		if err := exe.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "error launching %s: %s\n", program, err)
			os.Exit(1)
		}
	}
}

// assemble pipes asm to cc's stdin and links in the runtime archive,
// the same single-process pattern as teacher's main.go except for the
// extra archive argument our emitted code needs resolved.
func assemble(asm, program, runtimeArchive string) error {
	cc := exec.Command("cc", "-static", "-o", program, "-x", "assembler", "-", runtimeArchive)
	cc.Stdout = os.Stdout
	cc.Stderr = os.Stderr

	var b bytes.Buffer
	b.WriteString(asm)
	cc.Stdin = &b

	if err := cc.Run(); err != nil {
		return fmt.Errorf("error launching cc: %w", err)
	}
	return nil
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
