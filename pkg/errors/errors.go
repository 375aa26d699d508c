package errors

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type ArgumentMetadata struct {
	Command  string `json:"command"`
	Argument string `json:"argument"`
}

type OperationMetadata struct {
	Command string `json:"command"`
	TokenId string `json:"token_id"`
	Actor   string `json:"actor"`
}

type PathMetadata struct {
	Path  string `json:"path"`
	Level string `json:"level,omitempty"`
}

type CommandMetadata struct {
	Command string `json:"command"`
}

type ContractMetadata struct {
	Command string `json:"command"`
	TokenId string `json:"token_id"`
}

type OperatorsMetadata struct {
	Count    int `json:"count"`
	Required int `json:"required"`
}

type GatewayMetadata struct {
	Endpoint string `json:"endpoint"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}

var MISSING_ARGUMENT = Code[ArgumentMetadata]{
	1,
	"MISSING_ARGUMENT",
	grpccodes.InvalidArgument,
}

var OPERATION_FORBIDDEN = Code[OperationMetadata]{
	2,
	"OPERATION_FORBIDDEN",
	grpccodes.PermissionDenied,
}

var INVALID_DERIVATION_PATH = Code[PathMetadata]{
	3,
	"INVALID_DERIVATION_PATH",
	grpccodes.InvalidArgument,
}

var INVALID_COMMAND = Code[CommandMetadata]{4, "INVALID_COMMAND", grpccodes.InvalidArgument}

var EMPTY_CONTRACT = Code[ContractMetadata]{
	5,
	"EMPTY_CONTRACT",
	grpccodes.FailedPrecondition,
}

var MINIMUM_REQUIRED_OPERATORS = Code[OperatorsMetadata]{
	6,
	"MINIMUM_REQUIRED_OPERATORS",
	grpccodes.InvalidArgument,
}

var NETWORK_UNAVAILABLE = Code[GatewayMetadata]{7, "NETWORK_UNAVAILABLE", grpccodes.Unavailable}

var INVALID_OPTION = Code[ArgumentMetadata]{8, "INVALID_OPTION", grpccodes.InvalidArgument}
