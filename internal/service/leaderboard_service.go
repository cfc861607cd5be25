package service

import (
	"classroom_champions_backend/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// LeaderboardEntry 班级排行榜条目
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	StudentID uint   `json:"studentId"`
	Name      string `json:"name"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	Avatar    string `json:"avatar,omitempty"`
}

// LeaderboardService 班级XP排行，redis短TTL缓存
type LeaderboardService struct {
	StudentRepo *repository.StudentRepository
	Redis       *redis.Client
	TTL         time.Duration
}

func NewLeaderboardService(studentRepo *repository.StudentRepository, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{
		StudentRepo: studentRepo,
		Redis:       rdb,
		TTL:         30 * time.Second,
	}
}

func (s *LeaderboardService) Get(ctx context.Context, classID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	key := fmt.Sprintf("leaderboard:%d:%d", classID, limit)
	if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
		var entries []LeaderboardEntry
		if json.Unmarshal([]byte(cached), &entries) == nil {
			return entries, nil
		}
	}

	students, err := s.StudentRepo.TopByXP(classID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(students))
	for i, st := range students {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			StudentID: st.ID,
			Name:      st.FirstName + " " + st.LastName,
			XP:        st.TotalPoints,
			Level:     st.Level,
			Avatar:    st.AvatarImage,
		}
	}

	if payload, err := json.Marshal(entries); err == nil {
		s.Redis.Set(ctx, key, payload, s.TTL)
	}

	return entries, nil
}
