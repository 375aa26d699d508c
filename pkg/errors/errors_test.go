package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
)

// generateErrorFixtures creates test fixtures with sample metadata for each error type
func generateErrorFixtures() []Error {
	return []Error{
		INTERNAL_ERROR.New("unexpected failure").
			WithMetadata(map[string]any{
				"component": "gateway",
				"operation": "multisig-graph",
			}),

		MISSING_ARGUMENT.New("missing mandatory argument %s", "supply").
			WithMetadata(ArgumentMetadata{
				Command:  "CreateToken",
				Argument: "supply",
			}),

		OPERATION_FORBIDDEN.New("actor is not an operator").
			WithMetadata(OperationMetadata{
				Command: "TransferOwnership",
				TokenId: "3c0f48f38a3b05ff",
				Actor:   "05d4f7922ba9e4a8d0f0dbfbf580cb7f7345e33c60780dc0da06bd225fc7fc1b",
			}),

		INVALID_DERIVATION_PATH.New("path must contain 5 levels").
			WithMetadata(PathMetadata{
				Path:  "m/44'/4343'/0'",
				Level: "Address",
			}),

		INVALID_COMMAND.New("unknown command %s", "BurnToken").
			WithMetadata(CommandMetadata{
				Command: "BurnToken",
			}),

		EMPTY_CONTRACT.New("composition produced no transactions").
			WithMetadata(ContractMetadata{
				Command: "LockBalance",
				TokenId: "3c0f48f38a3b05ff",
			}),

		MINIMUM_REQUIRED_OPERATORS.New("at least %d operator required", 1).
			WithMetadata(OperatorsMetadata{
				Count:    0,
				Required: 1,
			}),

		NETWORK_UNAVAILABLE.New("gateway unreachable").
			WithMetadata(GatewayMetadata{
				Endpoint: "http://localhost:3000/account/multisig/graph",
			}),

		INVALID_OPTION.New("option %s is not a string", "name").
			WithMetadata(ArgumentMetadata{
				Command:  "CreateToken",
				Argument: "name",
			}),
	}
}

func TestErrorFixtures(t *testing.T) {
	fixtures := generateErrorFixtures()

	for _, err := range fixtures {
		require.NotNil(t, err)
		require.NotEmpty(t, err.Error())
		require.NotEmpty(t, err.CodeName())
		require.Contains(t, err.Error(), err.CodeName())
		require.Contains(t, err.Error(), fmt.Sprintf("(%d)", err.Code()))
		require.NotNil(t, err.Log())
	}
}

func TestErrorMetadata(t *testing.T) {
	err := MISSING_ARGUMENT.New("missing mandatory argument %s", "supply").
		WithMetadata(ArgumentMetadata{Command: "CreateToken", Argument: "supply"})

	metadata := err.Metadata()
	require.Equal(t, "CreateToken", metadata["command"])
	require.Equal(t, "supply", metadata["argument"])
	require.Equal(t, grpccodes.InvalidArgument, err.GrpcCode())
	require.Equal(t, uint16(1), err.Code())
}

func TestErrorWrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NETWORK_UNAVAILABLE.Wrap(cause)

	require.Contains(t, err.Error(), "NETWORK_UNAVAILABLE")
	require.Contains(t, err.Error(), cause.Error())
	require.Equal(t, grpccodes.Unavailable, err.GrpcCode())
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := map[uint16]string{
		INTERNAL_ERROR.Code:             INTERNAL_ERROR.Name,
		MISSING_ARGUMENT.Code:           MISSING_ARGUMENT.Name,
		OPERATION_FORBIDDEN.Code:        OPERATION_FORBIDDEN.Name,
		INVALID_DERIVATION_PATH.Code:    INVALID_DERIVATION_PATH.Name,
		INVALID_COMMAND.Code:            INVALID_COMMAND.Name,
		EMPTY_CONTRACT.Code:             EMPTY_CONTRACT.Name,
		MINIMUM_REQUIRED_OPERATORS.Code: MINIMUM_REQUIRED_OPERATORS.Name,
		NETWORK_UNAVAILABLE.Code:        NETWORK_UNAVAILABLE.Name,
		INVALID_OPTION.Code:             INVALID_OPTION.Name,
	}
	require.Len(t, codes, 9)
}
