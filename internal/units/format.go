package units

import "strconv"

func intString(i int64) string {
	return strconv.FormatInt(i, 10)
}

func floatString(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
