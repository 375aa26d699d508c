package restgateway

import (
	"fmt"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

type networkResponse struct {
	Network          string `json:"network"`
	GenerationHash   string `json:"generationHash"`
	CurrencyMosaicId string `json:"currencyMosaicId"`
}

func (r networkResponse) toConfig() (*symbol.NetworkConfig, error) {
	networkType, err := symbol.NetworkTypeFromString(r.Network)
	if err != nil {
		return nil, err
	}
	currencyId, err := symbol.MosaicIdFromHex(r.CurrencyMosaicId)
	if err != nil {
		return nil, fmt.Errorf("invalid currency mosaic id: %s", err)
	}
	if len(r.GenerationHash) == 0 {
		return nil, fmt.Errorf("missing generation hash")
	}
	return &symbol.NetworkConfig{
		Type:             networkType,
		GenerationHash:   r.GenerationHash,
		CurrencyMosaicId: currencyId,
	}, nil
}

type accountResponse struct {
	PublicKey string `json:"publicKey"`
	Address   string `json:"address"`
}

func (r accountResponse) toAccount() (symbol.PublicAccount, error) {
	addr, err := symbol.DecodeAddress(r.Address)
	if err != nil {
		return symbol.PublicAccount{}, fmt.Errorf("invalid account address: %s", err)
	}
	return symbol.PublicAccount{PublicKey: r.PublicKey, Address: addr}, nil
}

type multisigEntry struct {
	Account              accountResponse `json:"account"`
	MinApproval          int             `json:"minApproval"`
	MinRemoval           int             `json:"minRemoval"`
	CosignatoryAddresses []string        `json:"cosignatoryAddresses"`
	MultisigAddresses    []string        `json:"multisigAddresses"`
}

func (e multisigEntry) toMultisigInfo() (domain.MultisigInfo, error) {
	account, err := e.Account.toAccount()
	if err != nil {
		return domain.MultisigInfo{}, err
	}
	cosignatories, err := decodeAddresses(e.CosignatoryAddresses)
	if err != nil {
		return domain.MultisigInfo{}, err
	}
	multisigAddresses, err := decodeAddresses(e.MultisigAddresses)
	if err != nil {
		return domain.MultisigInfo{}, err
	}
	return domain.MultisigInfo{
		Account:           account,
		MinApproval:       e.MinApproval,
		MinRemoval:        e.MinRemoval,
		Cosignatories:     cosignatories,
		MultisigAddresses: multisigAddresses,
	}, nil
}

type multisigGraphLevel struct {
	Level   int             `json:"level"`
	Entries []multisigEntry `json:"entries"`
}

type mosaicResponse struct {
	Id           string          `json:"id"`
	Supply       uint64          `json:"supply"`
	Owner        accountResponse `json:"owner"`
	Divisibility uint8           `json:"divisibility"`
	Flags        uint8           `json:"flags"`
}

func (r mosaicResponse) toMosaicInfo() (*domain.MosaicInfo, error) {
	id, err := symbol.MosaicIdFromHex(r.Id)
	if err != nil {
		return nil, fmt.Errorf("invalid mosaic id: %s", err)
	}
	owner, err := r.Owner.toAccount()
	if err != nil {
		return nil, err
	}
	return &domain.MosaicInfo{
		Id:           id,
		Supply:       r.Supply,
		Owner:        owner,
		Divisibility: r.Divisibility,
		Flags:        symbol.MosaicFlags(r.Flags),
	}, nil
}

type mosaicAmount struct {
	Id     string `json:"id"`
	Amount uint64 `json:"amount"`
}

type transferEntry struct {
	Sender    accountResponse `json:"sender"`
	Recipient string          `json:"recipient"`
	Mosaics   []mosaicAmount  `json:"mosaics"`
	Message   string          `json:"message"`
}

func (e transferEntry) toTransferRecord() (domain.TransferRecord, error) {
	sender, err := e.Sender.toAccount()
	if err != nil {
		return domain.TransferRecord{}, err
	}
	recipient, err := symbol.DecodeAddress(e.Recipient)
	if err != nil {
		return domain.TransferRecord{}, fmt.Errorf("invalid recipient address: %s", err)
	}
	mosaics := make([]symbol.Mosaic, 0, len(e.Mosaics))
	for _, m := range e.Mosaics {
		id, err := symbol.MosaicIdFromHex(m.Id)
		if err != nil {
			return domain.TransferRecord{}, fmt.Errorf("invalid transfer mosaic id: %s", err)
		}
		mosaics = append(mosaics, symbol.Mosaic{Id: id, Amount: m.Amount})
	}
	return domain.TransferRecord{
		Sender:    sender,
		Recipient: recipient,
		Mosaics:   mosaics,
		Message:   e.Message,
	}, nil
}

type transfersResponse struct {
	Transfers []transferEntry `json:"transfers"`
}

type metadataEntryResponse struct {
	ScopedMetadataKey string `json:"scopedMetadataKey"`
	Value             string `json:"value"`
	TargetAddress     string `json:"targetAddress"`
}

func (e metadataEntryResponse) toMetadataEntry() (domain.MetadataEntry, error) {
	key, err := symbol.ScopedMetadataKeyFromHex(e.ScopedMetadataKey)
	if err != nil {
		return domain.MetadataEntry{}, err
	}
	entry := domain.MetadataEntry{Key: key, Value: e.Value}
	if len(e.TargetAddress) > 0 {
		target, err := symbol.DecodeAddress(e.TargetAddress)
		if err != nil {
			return domain.MetadataEntry{}, fmt.Errorf("invalid metadata target: %s", err)
		}
		entry.Target = target
	}
	return entry, nil
}

type metadataResponse struct {
	Entries []metadataEntryResponse `json:"entries"`
}

type restrictionEntryResponse struct {
	Key             string `json:"key"`
	RestrictionType uint8  `json:"restrictionType"`
	Value           uint64 `json:"value"`
	TargetAddress   string `json:"targetAddress,omitempty"`
}

func (e restrictionEntryResponse) toRestrictionEntry() (domain.RestrictionEntry, error) {
	key, err := symbol.ScopedMetadataKeyFromHex(e.Key)
	if err != nil {
		return domain.RestrictionEntry{}, err
	}
	entry := domain.RestrictionEntry{
		Key:   key,
		Type:  symbol.RestrictionType(e.RestrictionType),
		Value: e.Value,
	}
	if len(e.TargetAddress) > 0 {
		target, err := symbol.DecodeAddress(e.TargetAddress)
		if err != nil {
			return domain.RestrictionEntry{}, fmt.Errorf("invalid restriction target: %s", err)
		}
		entry.Target = target
	}
	return entry, nil
}

type restrictionsResponse struct {
	Entries []restrictionEntryResponse `json:"entries"`
}

type balanceResponse struct {
	Amount uint64 `json:"amount"`
}

type announceRequest struct {
	Payload string `json:"payload"`
}

type announceResponse struct {
	Hash string `json:"hash"`
}

func decodeAddresses(addrs []string) ([]symbol.Address, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	decoded := make([]symbol.Address, 0, len(addrs))
	for _, raw := range addrs {
		addr, err := symbol.DecodeAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid address %s: %s", raw, err)
		}
		decoded = append(decoded, addr)
	}
	return decoded, nil
}
