package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gonewx/platformer/pkg/embedded"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/types"
	"github.com/gonewx/platformer/pkg/utils"
	"gopkg.in/yaml.v3"
)

// 关卡默认值
const (
	DefaultPlayerSpeed        = 5.0
	DefaultPlayerJumpForce    = 10.0
	DefaultPlayerGravityScale = 2.0
	DefaultPlayerMinX         = -7.194367

	DefaultTrapDelay       = 0.1
	DefaultTrapActive      = 1.5
	DefaultTrapCooldown    = 1.0
	DefaultTrapMove        = 0.15
	DefaultTrapEasing      = "easeInOut"
	DefaultTrapDisplaceY   = 1.0
	DefaultAppleScore      = 5
	DefaultAppleCount      = 1
	DefaultAppleDestroyDel = 0.25

	DefaultWalkerSpeed     = 2.0
	DefaultFlyerSpeed      = 2.0
	DefaultFlyerChangeTime = 1.0
	DefaultFlyerDistance   = 3.0
	DefaultStompScore      = 10
	DefaultCrossfade       = 1.5
	DefaultMusicVolume     = 0.5
)

// 敌人类型
const (
	EnemyKindWalker = "walker"
	EnemyKindFlyer  = "flyer"
)

// LevelConfig 关卡配置数据结构
// 定义了关卡的地形、陷阱、检查点、收集物、敌人以及镜头和音乐参数
type LevelConfig struct {
	ID          string `yaml:"id"`          // 关卡ID，如 "1-1"
	Name        string `yaml:"name"`        // 关卡名称
	Description string `yaml:"description"` // 关卡描述（可选）

	Player PlayerConfig `yaml:"player"`
	Camera CameraConfig `yaml:"camera"`
	Limits LimitsConfig `yaml:"limits"` // 水平活动范围（可选）
	Life   LifeConfig   `yaml:"life"`   // 生命流程参数（可选，未配置的字段使用默认值）
	Music  MusicConfig  `yaml:"music"`

	Ground      []GroundConfig     `yaml:"ground"`
	Traps       []TrapConfig       `yaml:"traps"`
	Checkpoints []CheckpointConfig `yaml:"checkpoints"`
	Apples      []AppleConfig      `yaml:"apples"`
	Enemies     []EnemyConfig      `yaml:"enemies"`
}

// PlayerConfig 玩家出生点和手感参数
type PlayerConfig struct {
	Spawn        types.Vec2 `yaml:"spawn"`
	Size         types.Vec2 `yaml:"size"`         // 默认 0.8x1
	Speed        float64    `yaml:"speed"`        // 水平速度，默认 5
	JumpForce    float64    `yaml:"jumpForce"`    // 起跳冲量，默认 10
	GravityScale float64    `yaml:"gravityScale"` // 默认 2
	MinX         float64    `yaml:"minX"`         // 最左位置，0 表示使用默认值
}

// CameraConfig 镜头参数，0 表示使用默认值
type CameraConfig struct {
	HalfHeight  float64    `yaml:"halfHeight"`
	Aspect      float64    `yaml:"aspect"`
	LeftLimit   float64    `yaml:"leftLimit"`
	BottomLimit float64    `yaml:"bottomLimit"`
	LookOffsetY float64    `yaml:"lookOffsetY"`
	LookLerp    float64    `yaml:"lookLerp"`
	ConfineMinX float64    `yaml:"confineMinX"`
	ConfineMaxX float64    `yaml:"confineMaxX"`
	Padding     types.Vec2 `yaml:"padding"` // X 加到下界，Y 加到上界
}

// LimitsConfig 关卡开始时设置到生命控制器的水平限制
type LimitsConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Enabled bool    `yaml:"enabled"`
}

// LifeConfig 覆盖 game.DefaultLifeTuning 中的部分参数
type LifeConfig struct {
	InitialLives    int     `yaml:"initialLives"`
	FirstLifeAt     int     `yaml:"firstLifeAt"`
	LifeStep        int     `yaml:"lifeStep"`
	InvulnSeconds   float64 `yaml:"invulnSeconds"`
	FallDeathBuffer float64 `yaml:"fallDeathBuffer"`
	DeathTimeout    float64 `yaml:"deathTimeout"`
}

// MusicConfig 背景音乐播放列表
type MusicConfig struct {
	Tracks    []game.Track `yaml:"tracks"`
	Crossfade float64      `yaml:"crossfade"` // 默认 1.5 秒
	Volume    float64      `yaml:"volume"`    // 默认 0.5
	Shuffle   bool         `yaml:"shuffle"`
}

// GroundConfig 一块地面（中心 + 尺寸）
type GroundConfig struct {
	Position types.Vec2 `yaml:"position"`
	Size     types.Vec2 `yaml:"size"`
}

// TrapConfig 尖刺陷阱
// 时间参数用指针区分"未配置"和"配置为 0"（0 秒的移动表示瞬间到位）
type TrapConfig struct {
	Name         string      `yaml:"name"`
	Group        string      `yaml:"group"`    // 同组陷阱一起触发
	Position     types.Vec2  `yaml:"position"` // 陷阱区域中心
	Size         types.Vec2  `yaml:"size"`     // 默认 1x0.5
	AlwaysOn     bool        `yaml:"alwaysOn"` // 常驻陷阱，永远伸出
	Solid        bool        `yaml:"solid"`    // 实心碰撞体：只在伸出时伤人，碰到不会触发激活
	StartVisible bool        `yaml:"startVisible"`
	Delay        *float64    `yaml:"delay"`
	Active       *float64    `yaml:"active"`
	Cooldown     *float64    `yaml:"cooldown"`
	Move         *float64    `yaml:"move"`
	Displacement *types.Vec2 `yaml:"displacement"` // 默认 (0, 1)
	Easing       string      `yaml:"easing"`       // 缓动曲线名，默认 easeInOut
}

// CheckpointConfig 检查点
type CheckpointConfig struct {
	Name     string      `yaml:"name"`
	Position types.Vec2  `yaml:"position"`
	Size     types.Vec2  `yaml:"size"`    // 默认 1x2
	Respawn  *types.Vec2 `yaml:"respawn"` // 默认为检查点位置
}

// AppleConfig 苹果
type AppleConfig struct {
	Position     types.Vec2 `yaml:"position"`
	Score        int        `yaml:"score"`
	Apples       int        `yaml:"apples"`
	DestroyDelay float64    `yaml:"destroyDelay"`
}

// EnemyConfig 敌人
type EnemyConfig struct {
	Kind      string     `yaml:"kind"` // "walker" 或 "flyer"
	Position  types.Vec2 `yaml:"position"`
	Size      types.Vec2 `yaml:"size"` // 默认 1x1
	Speed     float64    `yaml:"speed"`
	Direction int        `yaml:"direction"` // 初始方向 ±1，默认 -1（walker）/ 1（flyer）

	// 仅 flyer
	VerticalDistance    float64 `yaml:"verticalDistance"`    // 上下移动范围，以出生点为中心
	ChangeDirectionTime float64 `yaml:"changeDirectionTime"` // 随机换向的基准时间

	StompScore int `yaml:"stompScore"`
}

// LoadLevelConfig 从YAML文件加载关卡配置
// 参数：
//
//	filepath - 关卡配置文件的路径（相对或绝对路径）
//
// 返回：
//
//	*LevelConfig - 解析后的关卡配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}
	return ParseLevelConfig(data, filepath)
}

// LoadEmbeddedLevel 从嵌入资源加载关卡 data/levels/level-<id>.yaml
func LoadEmbeddedLevel(levelID string) (*LevelConfig, error) {
	path := LevelPath(levelID)
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", path, err)
	}
	return ParseLevelConfig(data, path)
}

// EmbeddedLevelIDs 列出资源中所有关卡的ID，按文件名排序
func EmbeddedLevelIDs() ([]string, error) {
	paths, err := embedded.Glob(LevelPath("*"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		name := p[strings.LastIndex(p, "/")+1:]
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "level-"), ".yaml"))
	}
	return ids, nil
}

// LevelPath 返回关卡文件的资源路径
func LevelPath(levelID string) string {
	return fmt.Sprintf("data/levels/level-%s.yaml", levelID)
}

// ParseLevelConfig 解析关卡 YAML，应用默认值并校验
// source 只用于错误信息
func ParseLevelConfig(data []byte, source string) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML from %s: %w", source, err)
	}

	applyDefaults(&levelConfig)

	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, fmt.Errorf("invalid level config in %s: %w", source, err)
	}

	return &levelConfig, nil
}

func floatPtr(v float64) *float64 {
	return &v
}

// applyDefaults 为 LevelConfig 中缺失的可选字段设置默认值
func applyDefaults(config *LevelConfig) {
	p := &config.Player
	if p.Size.X == 0 && p.Size.Y == 0 {
		p.Size = types.V(0.8, 1)
	}
	if p.Speed == 0 {
		p.Speed = DefaultPlayerSpeed
	}
	if p.JumpForce == 0 {
		p.JumpForce = DefaultPlayerJumpForce
	}
	if p.GravityScale == 0 {
		p.GravityScale = DefaultPlayerGravityScale
	}
	if p.MinX == 0 {
		p.MinX = DefaultPlayerMinX
	}

	applyCameraDefaults(&config.Camera)

	if config.Music.Crossfade == 0 {
		config.Music.Crossfade = DefaultCrossfade
	}
	if config.Music.Volume == 0 {
		config.Music.Volume = DefaultMusicVolume
	}

	for i := range config.Traps {
		applyTrapDefaults(&config.Traps[i])
	}

	for i := range config.Checkpoints {
		cp := &config.Checkpoints[i]
		if cp.Size.X == 0 && cp.Size.Y == 0 {
			cp.Size = types.V(1, 2)
		}
		if cp.Respawn == nil {
			respawn := cp.Position
			cp.Respawn = &respawn
		}
	}

	for i := range config.Apples {
		a := &config.Apples[i]
		if a.Score == 0 {
			a.Score = DefaultAppleScore
		}
		if a.Apples == 0 {
			a.Apples = DefaultAppleCount
		}
		if a.DestroyDelay == 0 {
			a.DestroyDelay = DefaultAppleDestroyDel
		}
	}

	for i := range config.Enemies {
		applyEnemyDefaults(&config.Enemies[i])
	}
}

func applyCameraDefaults(c *CameraConfig) {
	if c.HalfHeight == 0 {
		c.HalfHeight = 5
	}
	if c.Aspect == 0 {
		c.Aspect = 16.0 / 9.0
	}
	if c.LeftLimit == 0 {
		c.LeftLimit = -7.194367
	}
	if c.BottomLimit == 0 {
		c.BottomLimit = -2.48
	}
	if c.LookOffsetY == 0 {
		c.LookOffsetY = 2
	}
	if c.LookLerp == 0 {
		c.LookLerp = 6
	}
	if c.ConfineMinX == 0 && c.ConfineMaxX == 0 {
		c.ConfineMinX = -5.451
		c.ConfineMaxX = 200
	}
}

func applyTrapDefaults(t *TrapConfig) {
	if t.Size.X == 0 && t.Size.Y == 0 {
		t.Size = types.V(1, 0.5)
	}
	if t.Delay == nil {
		t.Delay = floatPtr(DefaultTrapDelay)
	}
	if t.Active == nil {
		t.Active = floatPtr(DefaultTrapActive)
	}
	if t.Cooldown == nil {
		t.Cooldown = floatPtr(DefaultTrapCooldown)
	}
	if t.Move == nil {
		t.Move = floatPtr(DefaultTrapMove)
	}
	if t.Displacement == nil {
		d := types.V(0, DefaultTrapDisplaceY)
		t.Displacement = &d
	}
	if t.Easing == "" {
		t.Easing = DefaultTrapEasing
	}
}

func applyEnemyDefaults(e *EnemyConfig) {
	if e.Size.X == 0 && e.Size.Y == 0 {
		e.Size = types.V(1, 1)
	}
	if e.StompScore == 0 {
		e.StompScore = DefaultStompScore
	}

	switch e.Kind {
	case EnemyKindWalker:
		if e.Speed == 0 {
			e.Speed = DefaultWalkerSpeed
		}
		if e.Direction == 0 {
			e.Direction = -1
		}
	case EnemyKindFlyer:
		if e.Speed == 0 {
			e.Speed = DefaultFlyerSpeed
		}
		if e.Direction == 0 {
			e.Direction = 1
		}
		if e.VerticalDistance == 0 {
			e.VerticalDistance = DefaultFlyerDistance
		}
		if e.ChangeDirectionTime == 0 {
			e.ChangeDirectionTime = DefaultFlyerChangeTime
		}
	}
}

// validateLevelConfig 验证关卡配置的完整性和合法性
func validateLevelConfig(config *LevelConfig) error {
	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}
	if config.Name == "" {
		return fmt.Errorf("level name is required")
	}
	if len(config.Ground) == 0 {
		return fmt.Errorf("at least one ground block is required")
	}

	if config.Player.Size.X <= 0 || config.Player.Size.Y <= 0 {
		return fmt.Errorf("player size must be positive, got %v", config.Player.Size)
	}
	if config.Player.Speed < 0 || config.Player.JumpForce < 0 {
		return fmt.Errorf("player speed and jumpForce cannot be negative")
	}

	for i, g := range config.Ground {
		if g.Size.X <= 0 || g.Size.Y <= 0 {
			return fmt.Errorf("ground %d: size must be positive, got %v", i, g.Size)
		}
	}

	for i, t := range config.Traps {
		if t.Size.X <= 0 || t.Size.Y <= 0 {
			return fmt.Errorf("trap %d: size must be positive, got %v", i, t.Size)
		}
		if *t.Delay < 0 || *t.Active < 0 || *t.Cooldown < 0 || *t.Move < 0 {
			return fmt.Errorf("trap %d: timings cannot be negative", i)
		}
		if !utils.IsKnownEasing(t.Easing) {
			return fmt.Errorf("trap %d: unknown easing %q", i, t.Easing)
		}
	}

	for i, cp := range config.Checkpoints {
		if cp.Size.X <= 0 || cp.Size.Y <= 0 {
			return fmt.Errorf("checkpoint %d: size must be positive, got %v", i, cp.Size)
		}
	}

	for i, e := range config.Enemies {
		if e.Kind != EnemyKindWalker && e.Kind != EnemyKindFlyer {
			return fmt.Errorf("enemy %d: kind must be one of: walker, flyer, got %q", i, e.Kind)
		}
		if e.Direction != 1 && e.Direction != -1 {
			return fmt.Errorf("enemy %d: direction must be 1 or -1, got %d", i, e.Direction)
		}
		if e.Speed < 0 || e.VerticalDistance < 0 {
			return fmt.Errorf("enemy %d: speed and verticalDistance cannot be negative", i)
		}
	}

	for i, tr := range config.Music.Tracks {
		if tr.ID == "" {
			return fmt.Errorf("music track %d: id is required", i)
		}
	}
	if config.Music.Volume < 0 || config.Music.Volume > 1 {
		return fmt.Errorf("music volume must be between 0 and 1, got %v", config.Music.Volume)
	}

	return nil
}

// LifeTuning 把关卡覆盖项合并到默认的生命流程参数上
func (c *LevelConfig) LifeTuning() game.LifeTuning {
	t := game.DefaultLifeTuning()
	l := c.Life
	if l.InitialLives > 0 {
		t.InitialLives = l.InitialLives
	}
	if l.FirstLifeAt > 0 {
		t.FirstLifeAt = l.FirstLifeAt
	}
	if l.LifeStep > 0 {
		t.LifeStep = l.LifeStep
	}
	if l.InvulnSeconds > 0 {
		t.InvulnSeconds = l.InvulnSeconds
	}
	if l.FallDeathBuffer > 0 {
		t.FallDeathBuffer = l.FallDeathBuffer
	}
	if l.DeathTimeout > 0 {
		t.DeathTimeout = l.DeathTimeout
	}
	t.CameraBottomLimit = c.Camera.BottomLimit
	return t
}

// MusicOptions 转换为音乐管理器参数
func (c *LevelConfig) MusicOptions(seed int64) game.MusicOptions {
	return game.MusicOptions{
		Volume:    c.Music.Volume,
		Crossfade: c.Music.Crossfade,
		Shuffle:   c.Music.Shuffle,
		Seed:      seed,
	}
}
