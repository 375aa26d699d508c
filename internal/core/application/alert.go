package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
)

func (s *service) sendAnnouncedAlert(contract *domain.ContractRecord) {
	s.publishAlert(ports.ContractAnnounced, announcedAlert(contract))
}

func (s *service) publishAlert(topic ports.Topic, message any) {
	if s.alerts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.alerts.Publish(ctx, topic, message); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish alert")
	}
}

func announcedAlert(contract *domain.ContractRecord) ports.ContractAnnouncedAlert {
	return ports.ContractAnnouncedAlert{
		ContractId: contract.Id,
		TokenId:    contract.TokenId,
		Command:    contract.Command,
		Hash:       contract.Hash,
		InnerCount: contract.InnerCount,
		Cosigners:  len(contract.Cosigners),
	}
}
