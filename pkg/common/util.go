package common

import (
	"cmp"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func IsTestEnv() bool {
	return testing.Testing()
}
func IsDevelopment() bool {
	return os.Getenv(EnvKeyGoEnv) == "development"
}

func IsProduction() bool {
	return os.Getenv(EnvKeyGoEnv) == "production"
}

func Mapper[T any, R any](items []T, mapFn func(T) R) []R {
	mapped := make([]R, len(items))
	for i := range len(items) {
		mapped[i] = mapFn(items[i])
	}
	return mapped
}

func Reducer[T any, R any](items []T, reduceFn func(R, T) R, initAcc R) R {
	finalAcc := initAcc
	for i := range len(items) {
		finalAcc = reduceFn(finalAcc, items[i])
	}
	return finalAcc
}

// Distinct keeps the first occurrence of every key, preserving input order.
func Distinct[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Duplicates returns every key that appears more than once, sorted.
func Duplicates[T cmp.Ordered](items []T) []T {
	counts := make(map[T]int, len(items))
	for _, item := range items {
		counts[item]++
	}
	var dups []T
	for item, n := range counts {
		if n > 1 {
			dups = append(dups, item)
		}
	}
	slices.Sort(dups)
	return dups
}

func EnvBool(key string, fallback bool) bool {
	raw, found := os.LookupEnv(key)
	if !found || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func EnvInt(key string, fallback int) int {
	raw, found := os.LookupEnv(key)
	if !found || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}
