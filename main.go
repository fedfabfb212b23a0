package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/krehermann/evmasm/api"
	"github.com/krehermann/evmasm/asm"
	"github.com/krehermann/evmasm/types"
	"github.com/krehermann/evmasm/vm"
	"go.uber.org/zap"
)

// evmasm [flags] [code]
//
// assembles mnemonic text to hex bytecode, or disassembles, runs, or serves
// the http api.

func main() {
	var (
		code     = flag.String("code", "", "assembler text")
		calldata = flag.String("calldata", "", "assembler text for call data, used with -run")
		disasm   = flag.Bool("d", false, "disassemble hex bytecode")
		run      = flag.Bool("run", false, "execute the assembled code")
		serve    = flag.String("serve", "", "serve the http api on this address")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	l := zap.NewNop()
	if *verbose {
		l = zap.Must(zap.NewDevelopment())
	}
	zap.ReplaceGlobals(l)
	defer l.Sync()

	if *serve != "" {
		srv, err := api.NewServer(serverConfig(*serve, l))
		if err != nil {
			fatal(err)
		}
		fatal(srv.Start())
	}

	if flag.NArg() > 0 {
		if *code != "" {
			fatal(errors.New("cannot have a positional argument when -code is used"))
		}
		*code = flag.Arg(0)
	}

	if *disasm {
		b, err := types.BytecodeFromHex(*code)
		if err != nil {
			fatal(err)
		}
		text, err := asm.Format(b)
		if err != nil {
			fatal(err)
		}
		fmt.Print(text)
		return
	}

	bytecode, err := asm.Assemble(*code)
	if err != nil {
		fatal(err)
	}
	if !*run {
		fmt.Println(bytecode.Hex())
		return
	}

	input, err := asm.Assemble(*calldata)
	if err != nil {
		fatal(fmt.Errorf("calldata: %w", err))
	}
	machine := vm.NewVM(bytecode,
		vm.CalldataOpt(input),
		vm.TracerOpt(printStep))
	runErr := machine.Run()
	fmt.Println("returned:", types.Bytecode(machine.Returned()).Hex())
	if runErr != nil {
		fatal(runErr)
	}
}

// serverConfig shares the process logger so -v applies to the api too.
func serverConfig(addr string, l *zap.Logger) api.ServerConfig {
	return api.ServerConfig{
		ListenerAddr: addr,
		Logger:       l,
	}
}

func printStep(pc int, inst vm.Instruction, stack *vm.Stack) {
	fmt.Printf("%04d %-12s", pc, inst)
	for _, w := range stack.Words() {
		fmt.Printf(" %s", types.Bytecode(w.Trimmed()).Hex())
	}
	fmt.Println()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
