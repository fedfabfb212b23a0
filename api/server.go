package api

import (
	"errors"
	"net/http"

	"github.com/krehermann/evmasm/asm"
	"github.com/krehermann/evmasm/types"
	"github.com/krehermann/evmasm/vm"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type ServerConfig struct {
	ListenerAddr string
	Logger       *zap.Logger
}

type Server struct {
	ServerConfig
	assembler *asm.Assembler

	logger *zap.Logger
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Logger == nil {
		config.Logger, _ = zap.NewDevelopment()
	}
	s := &Server{
		ServerConfig: config,
		assembler:    asm.New(asm.WithLogger(config.Logger)),
		logger:       config.Logger.Named("api"),
	}

	return s, nil
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))

	return s.Router().Start(s.ListenerAddr)
}

// Router builds the echo instance serving the api.
func (s *Server) Router() *echo.Echo {
	echoer := echo.New()
	echoer.HideBanner = true
	echoer.Use(middleware.Recover())

	echoer.GET("/opcodes", s.handleGetOpcodes)
	echoer.POST("/assemble", s.handleAssemble)
	echoer.POST("/disassemble", s.handleDisassemble)
	echoer.POST("/run", s.handleRun)

	return echoer
}

func (s *Server) handleGetOpcodes(ectx echo.Context) error {
	ops := make(map[string]string)
	for op, name := range vm.Definitions() {
		if name != "" {
			ops[name] = types.Bytecode{byte(op)}.Hex()
		}
	}
	return ectx.JSON(http.StatusOK, ops)
}

func (s *Server) handleAssemble(ectx echo.Context) error {
	var req AssembleRequest
	if err := ectx.Bind(&req); err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}

	code, err := s.assembler.Assemble(req.Code)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}

	return ectx.JSON(http.StatusOK, AssembleResponse{Bytecode: code})
}

func (s *Server) handleDisassemble(ectx echo.Context) error {
	var req DisassembleRequest
	if err := ectx.Bind(&req); err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}

	ops, err := asm.Disassemble(req.Bytecode)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}

	resp := DisassembleResponse{Ops: make([]Op, 0, len(ops))}
	for _, op := range ops {
		resp.Ops = append(resp.Ops, Op{
			PC:        op.PC,
			Text:      op.String(),
			Immediate: op.Immediate,
		})
	}
	return ectx.JSON(http.StatusOK, resp)
}

func (s *Server) handleRun(ectx echo.Context) error {
	var req RunRequest
	if err := ectx.Bind(&req); err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}

	code, err := s.assembler.Assemble(req.Code)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}
	calldata, err := s.assembler.Assemble(req.Calldata)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest, errorResponse(err))
	}

	machine := vm.NewVM(code,
		vm.LoggerOpt(s.logger),
		vm.CalldataOpt(calldata))
	runErr := machine.Run()
	if runErr != nil && !errors.Is(runErr, vm.ErrReverted) {
		return ectx.JSON(http.StatusUnprocessableEntity, errorResponse(runErr))
	}

	resp := RunResponse{
		Bytecode: code,
		Returned: machine.Returned(),
		Reverted: runErr != nil,
		Stack:    make([]string, 0, machine.Stack.Len()),
		Storage:  make(map[string]string),
	}
	for _, w := range machine.Stack.Words() {
		resp.Stack = append(resp.Stack, types.Bytecode(w.Trimmed()).Hex())
	}
	for k, v := range machine.State().Snapshot() {
		resp.Storage[types.Bytecode(k.Trimmed()).Hex()] = types.Bytecode(v.Trimmed()).Hex()
	}
	return ectx.JSON(http.StatusOK, resp)
}

func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var asmErr *asm.Error
	if errors.As(err, &asmErr) {
		resp.Kind = asmErr.Kind.String()
		resp.Token = asmErr.Token
	}
	return resp
}
