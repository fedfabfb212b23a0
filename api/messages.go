package api

import "github.com/krehermann/evmasm/types"

type AssembleRequest struct {
	Code string `json:"code"`
}

type AssembleResponse struct {
	Bytecode types.Bytecode `json:"bytecode"`
}

type DisassembleRequest struct {
	Bytecode types.Bytecode `json:"bytecode"`
}

type Op struct {
	PC        int            `json:"pc"`
	Text      string         `json:"text"`
	Immediate types.Bytecode `json:"immediate,omitempty"`
}

type DisassembleResponse struct {
	Ops []Op `json:"ops"`
}

// RunRequest carries assembler text for both code and call data.
type RunRequest struct {
	Code     string `json:"code"`
	Calldata string `json:"calldata"`
}

type RunResponse struct {
	Bytecode types.Bytecode    `json:"bytecode"`
	Returned types.Bytecode    `json:"returned"`
	Reverted bool              `json:"reverted"`
	Stack    []string          `json:"stack"`
	Storage  map[string]string `json:"storage"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Token string `json:"token,omitempty"`
}
