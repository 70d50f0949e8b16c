//go:build !headless

package main

import "github.com/dati-mipt/plotexp/internal/interactive"

var show = interactive.Show
