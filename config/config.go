package config

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/ini.v1"

	"duelarena/character"
	"duelarena/fixed"
	"duelarena/input"
	"duelarena/match"
)

// Player 单个席位的配置
type Player struct {
	Character string // 角色 ini 路径；为空使用内置训练角色
	Keys      input.KeyMap
	Script    string // 非空时该席位由脚本循环驱动（训练假人），格式见 input.ParseScript
}

// Config 竞技场配置（ini）
type Config struct {
	Addr     string
	TickRate int
	LogFile  string
	LogLevel string
	Match    match.Config
	Players  [2]Player

	dir string // 配置文件所在目录，角色路径相对于此解析
}

// Default 无配置文件时的默认值
func Default() *Config {
	return &Config{
		Addr:     ":8080",
		TickRate: match.TicksPerSecond,
		LogFile:  "app.log",
		LogLevel: "info",
		Match:    match.DefaultConfig(),
		Players: [2]Player{
			{Keys: input.DefaultKeyMap(1)},
			{Keys: input.DefaultKeyMap(2)},
		},
	}
}

var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines: true,
	AllowShadows:            false,
}

// Load 读取配置文件；path 为空时返回默认值
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	c, err := parse(f)
	if err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// LoadBytes 从内存读取（测试用）
func LoadBytes(b []byte) (*Config, error) {
	f, err := ini.LoadSources(loadOptions, b)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read data: %w", err)
	}
	return parse(f)
}

func parse(f *ini.File) (*Config, error) {
	c := Default()

	srv := f.Section("server")
	c.Addr = srv.Key("addr").MustString(c.Addr)

	lg := f.Section("log")
	c.LogFile = lg.Key("file").MustString(c.LogFile)
	c.LogLevel = lg.Key("level").MustString(c.LogLevel)

	var err error
	ms := f.Section("match")
	if ms.HasKey("tick_rate") {
		v, e := ms.Key("tick_rate").Int()
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("config: [match] tick_rate: %w", e))
		} else {
			c.TickRate = v
		}
	}
	if ms.HasKey("buffer_window") {
		v, e := ms.Key("buffer_window").Int64()
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("config: [match] buffer_window: %w", e))
		} else {
			c.Match.BufferWindow = v
		}
	}
	if ms.HasKey("buffer_capacity") {
		v, e := ms.Key("buffer_capacity").Int()
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("config: [match] buffer_capacity: %w", e))
		} else {
			c.Match.BufferCapacity = v
		}
	}
	if ms.HasKey("spawn_distance") {
		v, e := fixed.Parse(ms.Key("spawn_distance").String())
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("config: [match] spawn_distance: %w", e))
		}
		c.Match.SpawnDistance = v
	}
	if c.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("config: [match] tick_rate must be positive, got %d", c.TickRate))
	}
	if c.Match.BufferWindow < 0 {
		err = multierr.Append(err, fmt.Errorf("config: [match] buffer_window must not be negative"))
	}
	if c.Match.BufferCapacity <= 0 {
		err = multierr.Append(err, fmt.Errorf("config: [match] buffer_capacity must be positive, got %d", c.Match.BufferCapacity))
	}

	for i := range c.Players {
		name := fmt.Sprintf("p%d", i+1)
		c.Players[i].Character = f.Section(name).Key("character").String()
		c.Players[i].Script = f.Section(name).Key("script").String()
		if _, e := input.ParseScript(c.Players[i].Script); e != nil {
			err = multierr.Append(err, fmt.Errorf("config: [%s] script: %w", name, e))
		}
		if keys, e := f.GetSection(name + ".keys"); e == nil {
			km, e := input.LoadKeyMap(keys)
			if e != nil {
				err = multierr.Append(err, fmt.Errorf("config: %w", e))
				continue
			}
			c.Players[i].Keys = km
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCharacter 加载该席位的角色数据
func (c *Config) LoadCharacter(i int) (*character.Data, error) {
	if i < 0 || i >= len(c.Players) {
		return nil, fmt.Errorf("config: %w: %d", match.ErrInvalidPlayer, i+1)
	}
	path := c.Players[i].Character
	if path == "" {
		return character.Training(), nil
	}
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	return character.LoadFile(path)
}
