// dice.go

package engine

import (
	"math/rand"
	"sync"
)

// Dice 随机数来源
type Dice interface {
	// Percent 返回 [0,100) 的均匀随机数
	Percent() float64
	// Intn 返回 [0,n) 的随机整数
	Intn(n int) int
}

type randDice struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewDice 创建带种子的随机数来源，可并发使用
func NewDice(seed int64) Dice {
	return &randDice{r: rand.New(rand.NewSource(seed))}
}

func (d *randDice) Percent() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Float64() * 100
}

func (d *randDice) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Intn(n)
}
