package symbol

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

const (
	uriScheme = "web+symbol"
	uriHost   = "transaction"
)

// TransactionURI wraps a serialized transaction payload into a shareable
// web+symbol link, so wallets can pick it up for cosigning.
type TransactionURI struct {
	Payload        []byte
	GenerationHash string
}

func NewTransactionURI(payload []byte, generationHash string) *TransactionURI {
	return &TransactionURI{Payload: payload, GenerationHash: generationHash}
}

func (u *TransactionURI) String() string {
	values := url.Values{}
	values.Set("data", base64.RawURLEncoding.EncodeToString(u.Payload))
	if len(u.GenerationHash) > 0 {
		values.Set("generationHash", u.GenerationHash)
	}
	return fmt.Sprintf("%s://%s?%s", uriScheme, uriHost, values.Encode())
}

func ParseTransactionURI(raw string) (*TransactionURI, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction uri: %s", err)
	}
	if parsed.Scheme != uriScheme {
		return nil, fmt.Errorf("invalid uri scheme %s, expected %s", parsed.Scheme, uriScheme)
	}
	if parsed.Host != uriHost {
		return nil, fmt.Errorf("invalid uri host %s, expected %s", parsed.Host, uriHost)
	}

	values := parsed.Query()
	data := values.Get("data")
	if len(data) == 0 {
		return nil, fmt.Errorf("missing data parameter in transaction uri")
	}
	payload, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid data parameter in transaction uri: %s", err)
	}

	return &TransactionURI{
		Payload:        payload,
		GenerationHash: values.Get("generationHash"),
	}, nil
}
