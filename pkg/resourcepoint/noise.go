package resourcepoint

import (
	"math"
	"math/rand"

	perlin "github.com/aquilax/go-perlin"

	"github.com/chuyi0414/qlmt/pkg/utils"
)

const (
	perlinAlpha  = 2.0
	perlinBeta   = 2.0
	perlinOctave = 3

	// DefaultBlendWeight 随机值与噪声值的默认混合比例
	DefaultBlendWeight = 0.5
)

// HashSeed 稳定的整数组合哈希（int32 溢出回绕）
// 结果为 0 时返回 1，保证可以直接作为随机种子
func HashSeed(values ...int) int {
	h := int32(17)
	for _, v := range values {
		h = h*31 + int32(v)
	}
	if h == 0 {
		return 1
	}
	return int(h)
}

// Noise 以配置种子为坐标偏移的二维 Perlin 噪声
type Noise struct {
	p         *perlin.Perlin
	seed      int
	frequency float64
}

// NewNoise 创建噪声采样器
func NewNoise(seed int, frequency float64) *Noise {
	return &Noise{
		p:         perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctave, int64(seed)),
		seed:      seed,
		frequency: frequency,
	}
}

// Sample 在 (种子, y, salt) 处采样，返回 [0,1]
func (n *Noise) Sample(y float64, salt int) float64 {
	x := (math.Abs(float64(n.seed))+0.123)*0.017 + float64(salt)*0.131
	ny := y*n.frequency + float64(salt)*0.071
	return utils.Clamp01((n.p.Noise2D(x, ny) + 1) * 0.5)
}

// Blend 按 weight 混合均匀随机值与噪声值
// weight=0 为纯随机，weight=1 为纯噪声
func (n *Noise) Blend(rng *rand.Rand, y float64, salt int, weight float64) float64 {
	r := rng.Float64()
	p := n.Sample(y, salt)
	w := utils.Clamp01(weight)
	return utils.Clamp01(r*(1-w) + p*w)
}
