// damage.go

package engine

// Mitigate 按防御减免伤害: ceil(raw * (1 - def/(100+def)))，至少为1
func Mitigate(raw, defense int) int {
	if defense < 0 {
		defense = 0
	}
	if raw <= 0 {
		return 1
	}
	// raw * 100 / (100+def) 向上取整，全程整数运算
	denom := 100 + defense
	dmg := (raw*100 + denom - 1) / denom
	if dmg < 1 {
		return 1
	}
	return dmg
}
