package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/registry"
	"github.com/msto63/dcmd/foundation/command/tokenize"
	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Request represents a JSON-RPC 2.0 request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// Response represents a JSON-RPC 2.0 response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// RPCError represents a JSON-RPC 2.0 error
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RunParams are the parameters of command.run. Either Line or Args is set.
type RunParams struct {
	Line string   `json:"line,omitempty"`
	Args []string `json:"args,omitempty"`
}

// RunResult is the outcome of one dispatched command
type RunResult struct {
	Outcome   string `json:"outcome"`
	Command   string `json:"command,omitempty"`
	Output    string `json:"output"`
	Value     string `json:"value,omitempty"`
	ValueType string `json:"value_type,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// ListParams are the parameters of command.list
type ListParams struct {
	Console bool `json:"console,omitempty"`
}

// CommandInfo describes one registered command
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
}

// HelpParams are the parameters of command.help
type HelpParams struct {
	Name    string `json:"name"`
	Console bool   `json:"console,omitempty"`
}

// HelpResult carries rendered help text
type HelpResult struct {
	Text string `json:"text"`
}

// Error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	// CommandNotFound is returned by command.help for unknown names
	CommandNotFound = -32001
)

// Methods
const (
	MethodRun  = "command.run"
	MethodList = "command.list"
	MethodHelp = "command.help"
)

// Handle processes a JSON-RPC request. Dispatches are serialized.
func (s *Server) Handle(ctx context.Context, request *Request) *Response {
	response := &Response{
		JSONRPC: "2.0",
		ID:      request.ID,
	}

	// Validate JSON-RPC version
	if request.JSONRPC != "2.0" {
		response.Error = &RPCError{
			Code:    InvalidRequest,
			Message: "Invalid JSON-RPC version",
		}
		return response
	}

	var rpcErr *RPCError
	switch request.Method {
	case MethodRun:
		response.Result, rpcErr = s.handleRun(ctx, request.Params)
	case MethodList:
		response.Result, rpcErr = s.handleList(request.Params)
	case MethodHelp:
		response.Result, rpcErr = s.handleHelp(request.Params)
	default:
		rpcErr = &RPCError{
			Code:    MethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", request.Method),
		}
	}
	if rpcErr != nil {
		response.Result = nil
		response.Error = rpcErr
	}
	return response
}

func decodeParams(raw json.RawMessage, v interface{}) *RPCError {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &RPCError{
			Code:    InvalidParams,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}
	return nil
}

func (s *Server) handleRun(ctx context.Context, raw json.RawMessage) (interface{}, *RPCError) {
	var params RunParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	tokens := params.Args
	line := strings.TrimSpace(params.Line)
	if line != "" {
		var err error
		if tokens, err = tokenize.Split(line); err != nil {
			return s.result(command.Result{Outcome: command.BindingError, Err: err}, ""), nil
		}
	}
	if len(tokens) == 0 {
		return nil, &RPCError{
			Code:    InvalidParams,
			Message: "line or args is required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out bytes.Buffer
	view := s.rt.With(&out, strings.NewReader(""))
	res := view.Dispatch(ctx, tokens)
	if err := view.Remember(ctx, line, tokens, res); err != nil {
		s.logger.Warn("Failed to record history", "error", err)
	}

	s.logger.Debug("Remote command dispatched", "command", tokens[0], "outcome", res.Outcome.String())
	return s.result(res, out.String()), nil
}

func (s *Server) result(res command.Result, output string) *RunResult {
	result := &RunResult{
		Outcome:   res.Outcome.String(),
		Command:   res.Command,
		Output:    output,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	if res.Value.IsValid() {
		result.Value = res.Value.String()
		result.ValueType = res.Value.TypeName()
	}
	if res.Err != nil {
		result.Error = res.Err.Error()
		result.ErrorCode = string(derror.GetCode(res.Err))
	}
	return result
}

func (s *Server) handleList(raw json.RawMessage) (interface{}, *RPCError) {
	var params ListParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	ns := registry.Loadable
	if params.Console {
		ns = registry.Console
	}

	decls := s.rt.Registry().Commands(ns)
	infos := make([]CommandInfo, 0, len(decls))
	for _, d := range decls {
		infos = append(infos, CommandInfo{
			Name:        d.Name(),
			Description: d.Description(),
			Usage:       d.Usage(),
		})
	}
	return infos, nil
}

func (s *Server) handleHelp(raw json.RawMessage) (interface{}, *RPCError) {
	var params HelpParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, &RPCError{
			Code:    InvalidParams,
			Message: "name is required",
		}
	}

	text, err := s.rt.Help(params.Name, params.Console)
	if err != nil {
		return nil, &RPCError{
			Code:    CommandNotFound,
			Message: err.Error(),
		}
	}
	return &HelpResult{Text: text}, nil
}
