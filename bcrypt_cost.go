//go:build !race

package accounts

func passwordHashCost(workFactor int) int {
	return workFactor
}
