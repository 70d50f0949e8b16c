//go:build headless

package main

import (
	"github.com/pkg/errors"

	"github.com/dati-mipt/plotexp"
)

// Headless builds carry no gnuplot dependency and can only write PNGs.
func show(*plotexp.Frame, string) error {
	return errors.New("built with the headless tag, rebuild without it or pass -show=false -png")
}
