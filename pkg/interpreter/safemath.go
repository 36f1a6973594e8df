package interpreter

import "math"

// Checked 32-bit arithmetic. Each operation raises instead of wrapping,
// with the literal operands in the message.

func checkedAdd(a, b int32) (int32, error) {
	if (b > 0 && a > math.MaxInt32-b) || (b < 0 && a < math.MinInt32-b) {
		return 0, arithmeticError("Integer overflow in %d + %d", a, b)
	}
	return a + b, nil
}

func checkedSub(a, b int32) (int32, error) {
	if (b < 0 && a > math.MaxInt32+b) || (b > 0 && a < math.MinInt32+b) {
		return 0, arithmeticError("Integer overflow in %d - %d", a, b)
	}
	return a - b, nil
}

func checkedMul(a, b int32) (int32, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == -1 && b == math.MinInt32 || b == -1 && a == math.MinInt32 {
		return 0, arithmeticError("Integer overflow in %d * %d", a, b)
	}
	result := a * b
	if result/b != a {
		return 0, arithmeticError("Integer overflow in %d * %d", a, b)
	}
	return result, nil
}

func checkedNeg(a int32) (int32, error) {
	if a == math.MinInt32 {
		return 0, arithmeticError("Integer overflow in -(%d)", a)
	}
	return -a, nil
}

func checkedDiv(a, b int32) (int32, error) {
	if b == 0 {
		return 0, arithmeticError("Division by zero in %d / %d", a, b)
	}
	if a == math.MinInt32 && b == -1 {
		return 0, arithmeticError("Integer overflow in %d / %d", a, b)
	}
	return a / b, nil
}

func checkedMod(a, b int32) (int32, error) {
	if b == 0 {
		return 0, arithmeticError("Modulo by zero in %d %% %d", a, b)
	}
	if a == math.MinInt32 && b == -1 {
		return 0, arithmeticError("Integer overflow in %d %% %d", a, b)
	}
	return a % b, nil
}
