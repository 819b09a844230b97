package main

import "strconv"

func parseIntParam(param string, fallback int) (int, bool) {
	if param == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(param)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloatParam(param string, fallback float64) (float64, bool) {
	if param == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
