package application

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
)

func TestAnnouncedAlert(t *testing.T) {
	contract := &domain.ContractRecord{
		Id:         "0d9df32e-07f0-4cbc-ae92-1a0d53802b4c",
		TokenId:    "4ad8a34709d51f22",
		Command:    "TransferOwnership",
		URI:        "web+symbol://transaction?data=00aabb",
		Hash:       "bd85e88afbe27f4ff17a66482b2be0ddbdbc4e1982d9ade2f3a4b170cf29e2b6",
		InnerCount: 4,
		Cosigners:  []string{"aa", "bb", "cc"},
	}

	alert := announcedAlert(contract)
	require.Equal(t, contract.Id, alert.ContractId)
	require.Equal(t, contract.TokenId, alert.TokenId)
	require.Equal(t, contract.Command, alert.Command)
	require.Equal(t, contract.Hash, alert.Hash)
	require.Equal(t, 4, alert.InnerCount)
	require.Equal(t, 3, alert.Cosigners)
}

func TestPublishAlertWithoutSink(t *testing.T) {
	// The alerts sink is optional, publishing without one is a no-op.
	svc := &service{}
	require.NotPanics(t, func() {
		svc.publishAlert(ports.ContractAnnounced, ports.ContractAnnouncedAlert{})
	})
}
