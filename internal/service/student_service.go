package service

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/repository"
	"classroom_champions_backend/internal/util"
	"classroom_champions_backend/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StudentService 学生名册管理、每日签到与每周清零
type StudentService struct {
	StudentRepo *repository.StudentRepository
	ClassRepo   *repository.ClassRepository
	CheckinRepo *repository.CheckinRepository
	Progression *ProgressionService
	Redis       *redis.Client

	nowFn func() time.Time
}

func NewStudentService(
	studentRepo *repository.StudentRepository,
	classRepo *repository.ClassRepository,
	checkinRepo *repository.CheckinRepository,
	progression *ProgressionService,
	rdb *redis.Client,
) *StudentService {
	return &StudentService{
		StudentRepo: studentRepo,
		ClassRepo:   classRepo,
		CheckinRepo: checkinRepo,
		Progression: progression,
		Redis:       rdb,
		nowFn:       time.Now,
	}
}

// Enroll 入班，全零初始状态
func (s *StudentService) Enroll(classID uint, firstName, lastName string) (*model.Student, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, util.ErrInvalidArgument
	}
	if _, err := s.ClassRepo.FindByID(classID); err != nil {
		return nil, util.ErrClassNotFound
	}

	student := model.NewStudent(classID, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	student.AvatarImage = AvatarImage(student.AvatarBase, student.Level)
	if err := s.StudentRepo.Create(student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) GetByID(id uint) (*model.Student, error) {
	student, err := s.StudentRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}
	s.Progression.NormalizeStudent(student)
	return student, nil
}

// RosterEntry 班级名册条目，带推导的等级进度
type RosterEntry struct {
	Student  model.Student `json:"student"`
	Progress LevelProgress `json:"progress"`
}

func (s *StudentService) Roster(classID uint) ([]RosterEntry, error) {
	students, err := s.StudentRepo.FindByClass(classID)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, len(students))
	for i := range students {
		s.Progression.NormalizeStudent(&students[i])
		roster[i] = RosterEntry{
			Student:  students[i],
			Progress: s.Progression.GetLevelProgress(&students[i]),
		}
	}
	return roster, nil
}

// Remove 教师显式移除学生，软删除
func (s *StudentService) Remove(id uint) error {
	student, err := s.StudentRepo.FindByID(id)
	if err != nil {
		return util.ErrStudentNotFound
	}
	return s.StudentRepo.Delete(student)
}

// CheckIn 每日签到：同日重复拒绝，昨天签过则连续天数+1，否则重置为1。
// 签到发放小额Responsible XP，顺带触发login_streak成就判定
func (s *StudentService) CheckIn(student *model.Student) (int, error) {
	now := s.nowFn()

	if _, err := s.CheckinRepo.FindByStudentAndDate(student.ID, now); err == nil {
		return student.LoginStreak, util.ErrAlreadyCheckedIn
	}

	streak := 1
	last, err := s.CheckinRepo.FindLatestByStudent(student.ID)
	if err == nil {
		streak = NextStreak(last.CheckinAt, last.StreakDays, now)
	} else if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	if err := s.CheckinRepo.Create(&model.Checkin{
		StudentID:  student.ID,
		CheckinAt:  now,
		StreakDays: streak,
	}); err != nil {
		return 0, err
	}

	student.LoginStreak = streak

	if bonus := s.Progression.Game.DailyCheckinXP; bonus > 0 {
		if err := s.Progression.AwardXP(student, model.CategoryResponsible, bonus, "checkin"); err != nil {
			return streak, err
		}
	} else if err := s.StudentRepo.Save(student); err != nil {
		return streak, err
	}

	return streak, nil
}

// NextStreak 昨天签过则延续，断签重置为1。
// 按日历日比较，夏令时切换日（23/25小时）不会误判断签
func NextStreak(lastCheckin time.Time, lastStreak int, now time.Time) int {
	lastDay := time.Date(lastCheckin.Year(), lastCheckin.Month(), lastCheckin.Day(), 0, 0, 0, 0, lastCheckin.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if lastDay.AddDate(0, 0, 1).Equal(today) {
		return lastStreak + 1
	}
	return 1
}

// WeeklyReset 班级周计数清零
func (s *StudentService) WeeklyReset(classID uint) error {
	if _, err := s.ClassRepo.FindByID(classID); err != nil {
		return util.ErrClassNotFound
	}
	return s.StudentRepo.ResetWeekly(classID)
}

// AutoWeeklyReset 周日定时清零所有班级。redis SETNX 按ISO周加锁，
// 多实例部署时只有一个实例执行
func (s *StudentService) AutoWeeklyReset(ctx context.Context) error {
	now := s.nowFn()
	if now.Weekday() != time.Sunday {
		return nil
	}

	year, week := now.ISOWeek()
	lockKey := fmt.Sprintf("weekly_reset:%d-%02d", year, week)

	ok, err := s.Redis.SetNX(ctx, lockKey, "1", 8*24*time.Hour).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	ids, err := s.ClassRepo.AllIDs()
	if err != nil {
		return err
	}
	for _, classID := range ids {
		if err := s.StudentRepo.ResetWeekly(classID); err != nil {
			logger.Log.Error("weekly reset failed", zap.Uint("classId", classID), zap.Error(err))
		}
	}

	logger.Log.Info("weekly points reset", zap.Int("classes", len(ids)))
	return nil
}

// Logs 学生加分流水
func (s *StudentService) Logs(studentID uint, limit int) ([]model.PointLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.StudentRepo.LogsByStudent(studentID, limit)
}
