package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	loc := time.UTC
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	// 昨天签过，延续
	yesterday := time.Date(2026, 3, 9, 22, 30, 0, 0, loc)
	assert.Equal(t, 4, NextStreak(yesterday, 3, today))

	// 断签，重置
	lastWeek := time.Date(2026, 3, 3, 9, 0, 0, 0, loc)
	assert.Equal(t, 1, NextStreak(lastWeek, 9, today))

	// 同一天（理论上被同日检查拦住）也不叠加
	sameDay := time.Date(2026, 3, 10, 1, 0, 0, 0, loc)
	assert.Equal(t, 1, NextStreak(sameDay, 3, today))
}

func TestNextStreakAcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 2026-03-08 美东进入夏令时，两个午夜之间只有23小时
	lastNight := time.Date(2026, 3, 8, 20, 0, 0, 0, ny)
	nextMorning := time.Date(2026, 3, 9, 9, 0, 0, 0, ny)
	assert.Equal(t, 5, NextStreak(lastNight, 4, nextMorning))

	// 秋季回拨（25小时）同样按日历日延续
	fallNight := time.Date(2026, 11, 1, 21, 0, 0, 0, ny)
	fallMorning := time.Date(2026, 11, 2, 8, 0, 0, 0, ny)
	assert.Equal(t, 3, NextStreak(fallNight, 2, fallMorning))
}

func TestAvatarImage(t *testing.T) {
	assert.Equal(t, "avatars/starter/level_1.png", AvatarImage("", 1))
	assert.Equal(t, "avatars/crown/level_3.png", AvatarImage("crown", 3))
}
