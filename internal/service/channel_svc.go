package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/repository"
)

type ChannelService struct {
	repo  *repository.ChannelRepo
	cache *CacheService
}

func NewChannelService(repo *repository.ChannelRepo, cache *CacheService) *ChannelService {
	return &ChannelService{repo: repo, cache: cache}
}

// Lookup returns the channel profile for a given channel ID.
// Uses cache-aside: check Redis first, fall back to DB, then populate cache.
func (s *ChannelService) Lookup(ctx context.Context, channelID string) (*model.ChannelResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.GetChannel(ctx, channelID)
		if err != nil {
			log.Printf("cache: channel get error: %v", err)
		} else if cached != nil {
			var resp model.ChannelResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	ch, err := s.repo.FindLatestByChannelID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	resp := &model.ChannelResponse{
		ChannelID:       ch.ChannelID,
		ChannelName:     ch.ChannelName,
		SubscriberCount: ch.SubscriberCount,
		VideoCount:      ch.VideoCount,
		SizeClass:       model.SizeClassFor(ch.SubscriberCount),
		LastUpdated:     ch.CapturedAt.Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.SetChannel(ctx, channelID, resp); err != nil {
			log.Printf("cache: channel set error: %v", err)
		}
	}

	return resp, nil
}
