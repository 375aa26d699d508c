package restgateway

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

type restGateway struct {
	url        string
	httpClient *http.Client
}

// NewNetworkGateway builds a gateway talking to a chain node over its REST
// API. The timeout bounds every single request, retries are the caller's
// concern.
func NewNetworkGateway(url string, requestTimeout time.Duration) (ports.NetworkGateway, error) {
	if len(url) <= 0 {
		return nil, fmt.Errorf("missing node url")
	}
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive")
	}
	url = strings.TrimSuffix(url, "/")

	return &restGateway{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

func (g *restGateway) Network(ctx context.Context) (*symbol.NetworkConfig, error) {
	data, err := g.makeRequest(ctx, http.MethodGet, "/network", nil)
	if err != nil {
		return nil, err
	}

	var resp networkResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network info: %s", err)
	}
	return resp.toConfig()
}

func (g *restGateway) AccountInfo(
	ctx context.Context, addr symbol.Address,
) (*symbol.PublicAccount, error) {
	endpoint := fmt.Sprintf("/accounts/%s", addr.Plain())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp accountResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account info: %s", err)
	}
	account, err := resp.toAccount()
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (g *restGateway) MultisigGraph(
	ctx context.Context, addr symbol.Address,
) (map[int][]domain.MultisigInfo, error) {
	endpoint := fmt.Sprintf("/accounts/%s/multisig/graph", addr.Plain())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp []multisigGraphLevel
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal multisig graph: %s", err)
	}

	graph := make(map[int][]domain.MultisigInfo)
	for _, level := range resp {
		entries := make([]domain.MultisigInfo, 0, len(level.Entries))
		for _, entry := range level.Entries {
			info, err := entry.toMultisigInfo()
			if err != nil {
				return nil, err
			}
			entries = append(entries, info)
		}
		graph[level.Level] = entries
	}
	return graph, nil
}

func (g *restGateway) MosaicInfo(
	ctx context.Context, id symbol.MosaicId,
) (*domain.MosaicInfo, error) {
	endpoint := fmt.Sprintf("/mosaics/%s", id.Hex())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp mosaicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mosaic info: %s", err)
	}
	return resp.toMosaicInfo()
}

func (g *restGateway) IncomingTransfers(
	ctx context.Context, addr symbol.Address,
) ([]domain.TransferRecord, error) {
	endpoint := fmt.Sprintf("/accounts/%s/transfers/incoming", addr.Plain())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp transfersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transfers: %s", err)
	}

	transfers := make([]domain.TransferRecord, 0, len(resp.Transfers))
	for _, entry := range resp.Transfers {
		record, err := entry.toTransferRecord()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, record)
	}
	return transfers, nil
}

func (g *restGateway) MosaicMetadata(
	ctx context.Context, id symbol.MosaicId,
) ([]domain.MetadataEntry, error) {
	endpoint := fmt.Sprintf("/mosaics/%s/metadata", id.Hex())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp metadataResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mosaic metadata: %s", err)
	}

	entries := make([]domain.MetadataEntry, 0, len(resp.Entries))
	for _, raw := range resp.Entries {
		entry, err := raw.toMetadataEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (g *restGateway) MosaicRestrictions(
	ctx context.Context, id symbol.MosaicId,
) ([]domain.RestrictionEntry, error) {
	endpoint := fmt.Sprintf("/mosaics/%s/restrictions", id.Hex())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp restrictionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mosaic restrictions: %s", err)
	}

	entries := make([]domain.RestrictionEntry, 0, len(resp.Entries))
	for _, raw := range resp.Entries {
		entry, err := raw.toRestrictionEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (g *restGateway) AccountBalance(
	ctx context.Context, addr symbol.Address, id symbol.MosaicId,
) (uint64, error) {
	endpoint := fmt.Sprintf("/accounts/%s/balance/%s", addr.Plain(), id.Hex())
	data, err := g.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	var resp balanceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("failed to unmarshal account balance: %s", err)
	}
	return resp.Amount, nil
}

func (g *restGateway) Announce(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("missing transaction payload")
	}

	body, err := json.Marshal(announceRequest{Payload: hex.EncodeToString(payload)})
	if err != nil {
		return "", err
	}
	data, err := g.makeRequest(ctx, http.MethodPut, "/transactions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var resp announceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal announce receipt: %s", err)
	}
	if len(resp.Hash) == 0 {
		return "", fmt.Errorf("node returned an empty receipt hash")
	}
	return resp.Hash, nil
}

func (g *restGateway) Close() {
	g.httpClient.CloseIdleConnections()
}

// makeRequest performs one JSON request against the node. Failures to reach
// the node come back as typed availability errors carrying the endpoint.
func (g *restGateway) makeRequest(
	ctx context.Context, method, endpoint string, body io.Reader,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.url+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.NETWORK_UNAVAILABLE.Wrap(err).
			WithMetadata(errors.GatewayMetadata{Endpoint: endpoint})
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NETWORK_UNAVAILABLE.Wrap(err).
			WithMetadata(errors.GatewayMetadata{Endpoint: endpoint})
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NETWORK_UNAVAILABLE.
			New("HTTP %d: %s", resp.StatusCode, string(bodyBytes)).
			WithMetadata(errors.GatewayMetadata{Endpoint: endpoint})
	}
	return bodyBytes, nil
}
