package symbol

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const addressPayloadSize = 21 // 1-byte network prefix + hash160 of the public key

// Address is the bech32m encoded on-chain identity of an account.
type Address struct {
	value string
}

// NewAddress derives the address of the given public key on the given network.
func NewAddress(pubkey *btcec.PublicKey, network NetworkType) (Address, error) {
	if pubkey == nil {
		return Address{}, fmt.Errorf("missing public key")
	}
	if !network.Valid() {
		return Address{}, fmt.Errorf("invalid network type 0x%x", byte(network))
	}

	payload := make([]byte, 0, addressPayloadSize)
	payload = append(payload, byte(network))
	payload = append(payload, btcutil.Hash160(pubkey.SerializeCompressed())...)

	grp, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return Address{}, err
	}
	encoded, err := bech32.EncodeM(network.HRP(), grp)
	if err != nil {
		return Address{}, err
	}
	return Address{value: encoded}, nil
}

// DecodeAddress parses a bech32m encoded address string.
func DecodeAddress(addr string) (Address, error) {
	if len(addr) == 0 {
		return Address{}, fmt.Errorf("missing address")
	}

	prefix, buf, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return Address{}, err
	}
	if prefix != Mainnet.HRP() && prefix != Testnet.HRP() {
		return Address{}, fmt.Errorf("unknown prefix %s", prefix)
	}
	grp, err := bech32.ConvertBits(buf, 5, 8, false)
	if err != nil {
		return Address{}, err
	}
	if len(grp) != addressPayloadSize {
		return Address{}, fmt.Errorf(
			"invalid address payload length, got %d want %d", len(grp), addressPayloadSize,
		)
	}
	if !NetworkType(grp[0]).Valid() {
		return Address{}, fmt.Errorf("invalid network prefix 0x%x", grp[0])
	}
	return Address{value: addr}, nil
}

// Plain returns the canonical encoded form.
func (a Address) Plain() string {
	return a.value
}

func (a Address) String() string {
	return a.value
}

func (a Address) IsZero() bool {
	return a.value == ""
}

// Bytes returns the raw 21-byte payload (network prefix + public key hash).
func (a Address) Bytes() ([]byte, error) {
	if a.IsZero() {
		return nil, fmt.Errorf("missing address")
	}
	_, buf, err := bech32.DecodeNoLimit(a.value)
	if err != nil {
		return nil, err
	}
	return bech32.ConvertBits(buf, 5, 8, false)
}

// Network returns the network the address belongs to.
func (a Address) Network() (NetworkType, error) {
	buf, err := a.Bytes()
	if err != nil {
		return 0, err
	}
	return NetworkType(buf[0]), nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value)
}

func (a *Address) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return err
	}
	if s == "" {
		a.value = ""
		return nil
	}
	decoded, err := DecodeAddress(s)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// PublicAccount is the read-only identity of an account: its compressed
// public key in hex and the derived address. Comparable with ==.
type PublicAccount struct {
	PublicKey string  `json:"publicKey"`
	Address   Address `json:"address"`
}

// NewPublicAccount builds a PublicAccount from a parsed public key.
func NewPublicAccount(pubkey *btcec.PublicKey, network NetworkType) (PublicAccount, error) {
	addr, err := NewAddress(pubkey, network)
	if err != nil {
		return PublicAccount{}, err
	}
	return PublicAccount{
		PublicKey: hex.EncodeToString(pubkey.SerializeCompressed()),
		Address:   addr,
	}, nil
}

// PublicAccountFromKey parses a hex encoded compressed public key and derives
// the matching address.
func PublicAccountFromKey(pubkeyHex string, network NetworkType) (PublicAccount, error) {
	buf, err := hex.DecodeString(pubkeyHex)
	if err != nil {
		return PublicAccount{}, fmt.Errorf("invalid public key format, must be hex")
	}
	pubkey, err := btcec.ParsePubKey(buf)
	if err != nil {
		return PublicAccount{}, err
	}
	return NewPublicAccount(pubkey, network)
}

func (p PublicAccount) IsZero() bool {
	return p.PublicKey == "" && p.Address.IsZero()
}

// Account is a key pair able to cosign composed transactions.
type Account struct {
	PublicAccount
	privateKey *btcec.PrivateKey
}

// NewAccount wraps a private key into an Account on the given network.
func NewAccount(privateKey *btcec.PrivateKey, network NetworkType) (*Account, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("missing private key")
	}
	public, err := NewPublicAccount(privateKey.PubKey(), network)
	if err != nil {
		return nil, err
	}
	return &Account{PublicAccount: public, privateKey: privateKey}, nil
}

// NewAccountFromPrivateKey parses a hex encoded private key.
func NewAccountFromPrivateKey(privateKeyHex string, network NetworkType) (*Account, error) {
	buf, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key format, must be hex")
	}
	priv, _ := btcec.PrivKeyFromBytes(buf)
	return NewAccount(priv, network)
}

// Sign produces a schnorr signature over the given 32-byte digest.
func (a *Account) Sign(digest [32]byte) ([]byte, error) {
	sig, err := schnorr.Sign(a.privateKey, digest[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}
