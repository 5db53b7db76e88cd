//go:build race

package accounts

import "golang.org/x/crypto/bcrypt"

func passwordHashCost(workFactor int) int {
	// Reduce cost for race-enabled builds so test suites can run with strict timeouts.
	if workFactor > bcrypt.DefaultCost {
		return bcrypt.DefaultCost
	}
	return workFactor
}
