package service

import (
	"classroom_champions_backend/internal/config"
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/util"
	"classroom_champions_backend/pkg/monitoring"
	"fmt"
	"math/rand"
	"time"
)

// StudentStore 进度引擎需要的最小持久化接口
type StudentStore interface {
	Save(student *model.Student) error
	AppendLog(entry *model.PointLog) error
}

// PetRoster 静态宠物图鉴
type PetRoster interface {
	PetTemplates() ([]model.PetTemplate, error)
}

// AchievementCatalog 静态成就目录
type AchievementCatalog interface {
	AchievementDefs() ([]model.AchievementDef, error)
}

// 升级/解锁/成就的进程内回调，注册后在触发调用中同步执行
type LevelUpHandler func(student *model.Student, oldLevel, newLevel int)
type PetUnlockHandler func(student *model.Student, pet model.Pet)
type AchievementHandler func(student *model.Student, def model.AchievementDef)

// ProgressionService 把 (学生, 类别, 数量) 变成新的XP/等级/币/成就状态。
// 数值表在进程启动时固定，运行期只读
type ProgressionService struct {
	Students     StudentStore
	Pets         PetRoster
	Achievements AchievementCatalog
	Game         config.GameConfig

	rng   *rand.Rand
	nowFn func() time.Time

	levelUpHandlers     []LevelUpHandler
	petUnlockHandlers   []PetUnlockHandler
	achievementHandlers []AchievementHandler
}

func NewProgressionService(students StudentStore, pets PetRoster, achievements AchievementCatalog, game config.GameConfig) *ProgressionService {
	return &ProgressionService{
		Students:     students,
		Pets:         pets,
		Achievements: achievements,
		Game:         game,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		nowFn:        time.Now,
	}
}

func (s *ProgressionService) OnLevelUp(h LevelUpHandler) {
	s.levelUpHandlers = append(s.levelUpHandlers, h)
}

func (s *ProgressionService) OnPetUnlock(h PetUnlockHandler) {
	s.petUnlockHandlers = append(s.petUnlockHandlers, h)
}

func (s *ProgressionService) OnAchievement(h AchievementHandler) {
	s.achievementHandlers = append(s.achievementHandlers, h)
}

// LevelForXP 阶梯函数：满足 xp >= thresholds[L-1] 的最大L，
// 收在 [1, MaxLevel]
func (s *ProgressionService) LevelForXP(xp int) int {
	level := 1
	for i, threshold := range s.Game.LevelThresholds {
		if xp >= threshold {
			level = i + 1
		} else {
			break
		}
	}
	if level > s.Game.MaxLevel() {
		level = s.Game.MaxLevel()
	}
	return level
}

// LevelProgress 当前等级、到下一级的百分比和剩余XP
type LevelProgress struct {
	CurrentLevel    int     `json:"currentLevel"`
	ProgressPercent float64 `json:"progressPercent"`
	XPForNext       int     `json:"xpForNext"`
}

func (s *ProgressionService) GetLevelProgress(student *model.Student) LevelProgress {
	level := s.LevelForXP(student.TotalPoints)
	if level >= s.Game.MaxLevel() {
		return LevelProgress{CurrentLevel: level, ProgressPercent: 100, XPForNext: 0}
	}

	floor := s.Game.LevelThresholds[level-1]
	ceil := s.Game.LevelThresholds[level]
	percent := float64(student.TotalPoints-floor) / float64(ceil-floor) * 100

	return LevelProgress{
		CurrentLevel:    level,
		ProgressPercent: percent,
		XPForNext:       ceil - student.TotalPoints,
	}
}

// AwardXP 对单个学生原子地结算一次加分：计数器、流水、升级、
// 宠物解锁、成就。校验失败不产生任何变更
func (s *ProgressionService) AwardXP(student *model.Student, category model.Category, amount int, source string) error {
	if err := s.apply(student, category, amount, source, true); err != nil {
		return err
	}
	return s.Students.Save(student)
}

// apply 内存内的状态迁移。evalAchievements=false 用于成就奖励的
// 追加XP，避免成就触发成就
func (s *ProgressionService) apply(student *model.Student, category model.Category, amount int, source string, evalAchievements bool) error {
	if !model.ValidCategory(category) {
		return util.ErrInvalidCategory
	}
	if amount <= 0 {
		return util.ErrInvalidAmount
	}

	oldTotal := student.TotalPoints
	student.TotalPoints += amount
	student.WeeklyPoints += amount
	student.CategoryTotal[category] += amount
	student.CategoryWeekly[category] += amount

	monitoring.XPAwarded.WithLabelValues(string(category)).Add(float64(amount))

	if err := s.Students.AppendLog(&model.PointLog{
		StudentID: student.ID,
		Type:      model.LogXP,
		Category:  category,
		Amount:    amount,
		Source:    source,
		OldTotal:  oldTotal,
		NewTotal:  student.TotalPoints,
	}); err != nil {
		return err
	}

	oldLevel := s.LevelForXP(oldTotal)
	newLevel := s.LevelForXP(student.TotalPoints)
	if newLevel > oldLevel {
		student.Level = newLevel
		student.AvatarImage = AvatarImage(student.AvatarBase, newLevel)
		for _, h := range s.levelUpHandlers {
			h(student, oldLevel, newLevel)
		}
	}

	s.maybeUnlockPet(student)

	if evalAchievements {
		if err := s.evaluateAchievements(student); err != nil {
			return err
		}
	}

	return nil
}

// maybeUnlockPet 没有出战宠物且累计XP达到阈值时，从图鉴随机发一只。
// 发完 Pet 非空，天然只触发一次
func (s *ProgressionService) maybeUnlockPet(student *model.Student) {
	if student.Pet != nil || student.TotalPoints < s.Game.PetUnlockXP {
		return
	}

	templates, err := s.Pets.PetTemplates()
	if err != nil || len(templates) == 0 {
		return
	}

	tpl := templates[s.rng.Intn(len(templates))]
	pet := model.NewPet(&tpl, s.nowFn())
	student.OwnedPets = append(student.OwnedPets, pet)
	student.Pet = &pet

	for _, h := range s.petUnlockHandlers {
		h(student, pet)
	}
}

// evaluateAchievements 对照目录逐条判定，按目录顺序授予未拥有且
// 条件成立的成就。成就的追加XP走 evalAchievements=false 的路径
func (s *ProgressionService) evaluateAchievements(student *model.Student) error {
	defs, err := s.Achievements.AchievementDefs()
	if err != nil {
		return err
	}

	for _, def := range defs {
		if student.HasAchievement(def.Code) || !def.Satisfied(student) {
			continue
		}

		student.Achievements = append(student.Achievements, def.Code)

		if def.BonusCoins > 0 {
			oldCoins := student.Coins
			student.Coins += def.BonusCoins
			if err := s.Students.AppendLog(&model.PointLog{
				StudentID: student.ID,
				Type:      model.LogCoins,
				Amount:    def.BonusCoins,
				Source:    "achievement:" + def.Code,
				OldTotal:  oldCoins,
				NewTotal:  student.Coins,
			}); err != nil {
				return err
			}
		}

		if def.BonusXP > 0 {
			if err := s.apply(student, model.CategoryLearner, def.BonusXP, "achievement:"+def.Code, false); err != nil {
				return err
			}
		}

		for _, h := range s.achievementHandlers {
			h(student, def)
		}
	}

	return nil
}

// BulkAwardError 批量加分中单个学生的失败
type BulkAwardError struct {
	StudentID uint   `json:"studentId"`
	Message   string `json:"message"`
}

// BulkAwardResult 成功名单与失败明细都上报
type BulkAwardResult struct {
	Awarded []uint           `json:"awarded"`
	Errors  []BulkAwardError `json:"errors,omitempty"`
}

// BulkAwardXP 对ids内的每个学生独立加分，逐个收集错误不中断。
// 不在ids里的学生原样跳过
func (s *ProgressionService) BulkAwardXP(students []*model.Student, ids []uint, category model.Category, amount int, source string) BulkAwardResult {
	idSet := make(map[uint]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	var result BulkAwardResult
	for _, student := range students {
		if !idSet[student.ID] {
			continue
		}
		if err := s.AwardXP(student, category, amount, source); err != nil {
			result.Errors = append(result.Errors, BulkAwardError{StudentID: student.ID, Message: err.Error()})
			continue
		}
		result.Awarded = append(result.Awarded, student.ID)
	}
	return result
}

// AwardCoins 直接发奖励币并记流水（任务奖励等来源）
func (s *ProgressionService) AwardCoins(student *model.Student, amount int, source string) error {
	if amount <= 0 {
		return util.ErrInvalidAmount
	}
	oldCoins := student.Coins
	student.Coins += amount
	if err := s.Students.AppendLog(&model.PointLog{
		StudentID: student.ID,
		Type:      model.LogCoins,
		Amount:    amount,
		Source:    source,
		OldTotal:  oldCoins,
		NewTotal:  student.Coins,
	}); err != nil {
		return err
	}
	return s.Students.Save(student)
}

// NormalizeStudent 修正 level 与 totalPoints 不一致的历史数据
func (s *ProgressionService) NormalizeStudent(student *model.Student) {
	student.Normalize()
	if want := s.LevelForXP(student.TotalPoints); student.Level != want {
		student.Level = want
		student.AvatarImage = AvatarImage(student.AvatarBase, want)
	}
}

// AvatarImage 头像图按等级分档
func AvatarImage(base string, level int) string {
	if base == "" {
		base = "starter"
	}
	return fmt.Sprintf("avatars/%s/level_%d.png", base, level)
}
