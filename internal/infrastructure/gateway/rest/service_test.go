package restgateway_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	restgateway "github.com/tokenstd/nip13d/internal/infrastructure/gateway/rest"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

const (
	testTokenIdHex     = "4ad8a34709d51f22"
	testGenerationHash = "57f7da205008026c776cb6aed843393f04cd458e0aa2d9f1d5f31a402072b2d6"
	testCurrencyIdHex  = "6bed913fa20223f8"
	testMetadataKeyHex = "c0fe5c0de982b1a4"
	testReceiptHash    = "bd85e88afbe27f4ff17a66482b2be0ddbdbc4e1982d9ade2f3a4b170cf29e2b6"
)

type nodeFixture struct {
	target    symbol.PublicAccount
	operator  symbol.PublicAccount
	partition symbol.PublicAccount
	tokenId   symbol.MosaicId
}

func newNodeFixture(t *testing.T) nodeFixture {
	t.Helper()
	tokenId, err := symbol.MosaicIdFromHex(testTokenIdHex)
	require.NoError(t, err)
	return nodeFixture{
		target:    freshAccount(t),
		operator:  freshAccount(t),
		partition: freshAccount(t),
		tokenId:   tokenId,
	}
}

func newMockNode(t *testing.T, fx nodeFixture) *httptest.Server {
	t.Helper()

	targetAddr := fx.target.Address.Plain()
	operatorAddr := fx.operator.Address.Plain()
	partitionAddr := fx.partition.Address.Plain()

	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/network":
				fmt.Fprintf(
					w, `{"network":"testnet","generationHash":%q,"currencyMosaicId":%q}`,
					testGenerationHash, testCurrencyIdHex,
				)
			case "/accounts/" + partitionAddr:
				fmt.Fprintf(
					w, `{"publicKey":%q,"address":%q}`,
					fx.partition.PublicKey, partitionAddr,
				)
			case "/accounts/" + targetAddr + "/multisig/graph":
				fmt.Fprintf(w, `[
					{"level":0,"entries":[{
						"account":{"publicKey":%q,"address":%q},
						"minApproval":2,"minRemoval":2,
						"cosignatoryAddresses":[%q],
						"multisigAddresses":[]
					}]},
					{"level":1,"entries":[{
						"account":{"publicKey":%q,"address":%q},
						"minApproval":0,"minRemoval":0,
						"cosignatoryAddresses":[],
						"multisigAddresses":[%q,%q]
					}]}
				]`,
					fx.target.PublicKey, targetAddr, operatorAddr,
					fx.operator.PublicKey, operatorAddr, targetAddr, partitionAddr,
				)
			case "/mosaics/" + testTokenIdHex:
				fmt.Fprintf(
					w, `{"id":%q,"supply":1000,"owner":{"publicKey":%q,"address":%q},"divisibility":0,"flags":14}`,
					testTokenIdHex, fx.target.PublicKey, targetAddr,
				)
			case "/accounts/" + partitionAddr + "/transfers/incoming":
				fmt.Fprintf(w, `{"transfers":[{
					"sender":{"publicKey":%q,"address":%q},
					"recipient":%q,
					"mosaics":[{"id":%q,"amount":250}],
					"message":"partition funding"
				}]}`,
					fx.target.PublicKey, targetAddr, partitionAddr, testTokenIdHex,
				)
			case "/mosaics/" + testTokenIdHex + "/metadata":
				fmt.Fprintf(
					w, `{"entries":[{"scopedMetadataKey":%q,"value":"US0378331005","targetAddress":%q}]}`,
					testMetadataKeyHex, targetAddr,
				)
			case "/mosaics/" + testTokenIdHex + "/restrictions":
				fmt.Fprintf(w, `{"entries":[
					{"key":%q,"restrictionType":1,"value":1},
					{"key":%q,"restrictionType":0,"value":2,"targetAddress":%q}
				]}`,
					testMetadataKeyHex, testMetadataKeyHex, partitionAddr,
				)
			case "/accounts/" + partitionAddr + "/balance/" + testTokenIdHex:
				fmt.Fprint(w, `{"amount":250}`)
			case "/transactions":
				if r.Method != http.MethodPut {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				var req struct {
					Payload string `json:"payload"`
				}
				require.NoError(t, json.Unmarshal(body, &req))
				require.NotEmpty(t, req.Payload)
				fmt.Fprintf(w, `{"hash":%q}`, testReceiptHash)
			default:
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error":"not found"}`)
			}
		}),
	)
	t.Cleanup(server.Close)
	return server
}

func TestNewNetworkGateway(t *testing.T) {
	gateway, err := restgateway.NewNetworkGateway("", time.Second)
	require.Error(t, err)
	require.Nil(t, gateway)

	gateway, err = restgateway.NewNetworkGateway("http://localhost:3000", 0)
	require.Error(t, err)
	require.Nil(t, gateway)

	gateway, err = restgateway.NewNetworkGateway("http://localhost:3000/", time.Second)
	require.NoError(t, err)
	require.NotNil(t, gateway)
	gateway.Close()
}

func TestGatewayQueries(t *testing.T) {
	ctx := context.Background()
	fx := newNodeFixture(t)
	server := newMockNode(t, fx)

	gateway, err := restgateway.NewNetworkGateway(server.URL, 5*time.Second)
	require.NoError(t, err)
	defer gateway.Close()

	t.Run("network", func(t *testing.T) {
		config, err := gateway.Network(ctx)
		require.NoError(t, err)
		require.NotNil(t, config)
		require.Equal(t, symbol.Testnet, config.Type)
		require.Equal(t, testGenerationHash, config.GenerationHash)
		require.Equal(t, testCurrencyIdHex, config.CurrencyMosaicId.Hex())
	})

	t.Run("account_info", func(t *testing.T) {
		account, err := gateway.AccountInfo(ctx, fx.partition.Address)
		require.NoError(t, err)
		require.NotNil(t, account)
		require.Equal(t, fx.partition, *account)
	})

	t.Run("multisig_graph", func(t *testing.T) {
		graph, err := gateway.MultisigGraph(ctx, fx.target.Address)
		require.NoError(t, err)
		require.Len(t, graph, 2)

		require.Len(t, graph[0], 1)
		require.Equal(t, fx.target, graph[0][0].Account)
		require.Equal(t, 2, graph[0][0].MinApproval)
		require.Equal(t, []symbol.Address{fx.operator.Address}, graph[0][0].Cosignatories)
		require.Empty(t, graph[0][0].MultisigAddresses)

		require.Len(t, graph[1], 1)
		require.Equal(t, fx.operator, graph[1][0].Account)
		require.Contains(t, graph[1][0].MultisigAddresses, fx.partition.Address)
	})

	t.Run("mosaic_info", func(t *testing.T) {
		info, err := gateway.MosaicInfo(ctx, fx.tokenId)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Equal(t, fx.tokenId, info.Id)
		require.Equal(t, uint64(1000), info.Supply)
		require.Equal(t, fx.target, info.Owner)
		require.True(t, info.Flags&symbol.MosaicFlagTransferable != 0)
		require.True(t, info.Flags&symbol.MosaicFlagRevokable != 0)
	})

	t.Run("incoming_transfers", func(t *testing.T) {
		transfers, err := gateway.IncomingTransfers(ctx, fx.partition.Address)
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		require.Equal(t, fx.target, transfers[0].Sender)
		require.Equal(t, fx.partition.Address, transfers[0].Recipient)
		require.Equal(t, uint64(250), transfers[0].AmountOf(fx.tokenId))
		require.Equal(t, "partition funding", transfers[0].Message)
	})

	t.Run("mosaic_metadata", func(t *testing.T) {
		entries, err := gateway.MosaicMetadata(ctx, fx.tokenId)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, testMetadataKeyHex, entries[0].Key.Hex())
		require.Equal(t, "US0378331005", entries[0].Value)
		require.Equal(t, fx.target.Address, entries[0].Target)
		require.Empty(t, entries[0].Field)
	})

	t.Run("mosaic_restrictions", func(t *testing.T) {
		entries, err := gateway.MosaicRestrictions(ctx, fx.tokenId)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		require.Equal(t, symbol.RestrictionTypeEq, entries[0].Type)
		require.Equal(t, uint64(1), entries[0].Value)
		require.True(t, entries[0].Target.IsZero())

		require.Equal(t, uint64(2), entries[1].Value)
		require.Equal(t, fx.partition.Address, entries[1].Target)
	})

	t.Run("account_balance", func(t *testing.T) {
		amount, err := gateway.AccountBalance(ctx, fx.partition.Address, fx.tokenId)
		require.NoError(t, err)
		require.Equal(t, uint64(250), amount)
	})

	t.Run("announce", func(t *testing.T) {
		payload, err := hex.DecodeString("00aabbccddeeff11")
		require.NoError(t, err)

		receipt, err := gateway.Announce(ctx, payload)
		require.NoError(t, err)
		require.Equal(t, testReceiptHash, receipt)

		_, err = gateway.Announce(ctx, nil)
		require.Error(t, err)
	})
}

func TestGatewayNodeFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("node_error_response", func(t *testing.T) {
		server := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":"database offline"}`)
			}),
		)
		t.Cleanup(server.Close)

		gateway, err := restgateway.NewNetworkGateway(server.URL, time.Second)
		require.NoError(t, err)
		defer gateway.Close()

		_, err = gateway.Network(ctx)
		require.Error(t, err)

		typed, ok := err.(errors.Error)
		require.True(t, ok)
		require.Equal(t, errors.NETWORK_UNAVAILABLE.Code, typed.Code())
		require.Equal(t, "/network", typed.Metadata()["endpoint"])
	})

	t.Run("node_unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		gateway, err := restgateway.NewNetworkGateway(url, time.Second)
		require.NoError(t, err)
		defer gateway.Close()

		_, err = gateway.Network(ctx)
		require.Error(t, err)

		typed, ok := err.(errors.Error)
		require.True(t, ok)
		require.Equal(t, errors.NETWORK_UNAVAILABLE.Code, typed.Code())
	})
}

func freshAccount(t *testing.T) symbol.PublicAccount {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	account, err := symbol.NewAccount(priv, symbol.Testnet)
	require.NoError(t, err)
	return account.PublicAccount
}
