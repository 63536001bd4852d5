package fixed

import (
	"fmt"
	"strconv"
	"strings"
)

// Scale 定点数缩放系数：1.0 == 1000
const Scale = 1000

// Scalar 定点标量（×1000），仿真热路径上禁止使用浮点
type Scalar int64

// FromInt 整数转定点
func FromInt(v int64) Scalar { return Scalar(v * Scale) }

// FromMilli 直接以千分单位构造
func FromMilli(v int64) Scalar { return Scalar(v) }

// Int 截断为整数部分
func (s Scalar) Int() int64 { return int64(s) / Scale }

// Mul 定点乘法，结果向零截断
func (s Scalar) Mul(o Scalar) Scalar { return Scalar(int64(s) * int64(o) / Scale) }

// Div 定点除法；除数为 0 时返回 0
func (s Scalar) Div(o Scalar) Scalar {
	if o == 0 {
		return 0
	}
	return Scalar(int64(s) * Scale / int64(o))
}

// Clamp 将值限制在 [lo, hi]
func (s Scalar) Clamp(lo, hi Scalar) Scalar {
	if s < lo {
		return lo
	}
	if s > hi {
		return hi
	}
	return s
}

// Vec2 定点二维向量
type Vec2 struct {
	X Scalar
	Y Scalar
}

// V 便捷构造（参数为整数单位）
func V(x, y int64) Vec2 { return Vec2{X: FromInt(x), Y: FromInt(y)} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Rect 轴对齐矩形，(X,Y) 为左下角
type Rect struct {
	X, Y Scalar
	W, H Scalar
}

// AnchoredBottomCenter 以底边中点为锚点构造矩形
func AnchoredBottomCenter(anchor Vec2, w, h Scalar) Rect {
	return Rect{X: anchor.X - w/2, Y: anchor.Y, W: w, H: h}
}

// Overlaps 判断两个矩形是否相交（边缘相接不算）
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Contains 点是否在矩形内（含左下边界）
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Parse 解析十进制字符串（如 "-4.25"），最多保留三位小数，不经过浮点
func Parse(s string) (Scalar, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("fixed: empty value")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		return 0, fmt.Errorf("fixed: invalid value %q", s)
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("fixed: invalid value %q", s)
	}
	var whole int64
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("fixed: invalid value %q: %w", s, err)
		}
		whole = v
	}
	if len(fracPart) > 3 {
		fracPart = fracPart[:3]
	}
	var frac int64
	if fracPart != "" {
		v, err := strconv.ParseUint(fracPart, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("fixed: invalid value %q: %w", s, err)
		}
		frac = int64(v)
		for i := len(fracPart); i < 3; i++ {
			frac *= 10
		}
	}
	out := Scalar(whole*Scale + frac)
	if neg {
		out = -out
	}
	return out, nil
}

// String 输出十进制形式，如 "4.500"
func (s Scalar) String() string {
	sign := ""
	v := int64(s)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/Scale, v%Scale)
}
