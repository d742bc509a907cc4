package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
// Возвращает новый слайс и флаг: были ли замены.
func normalizeCRLF(content []byte) ([]byte, bool) {
	// Быстрый путь: если нет \r, возвращаем как есть.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// buildLineIndex возвращает смещения начал строк: первая строка всегда с 0,
// дальше — позиция сразу за каждым '\n'.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 1, len(content)/16+1)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)+1)
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Пустой индекс — весь файл одна строка.
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: наибольшее начало строки lineIdx[i] <= off
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	// lineIdx[0] == 0, поэтому hi >= 0 для любого off.
	if hi < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: uint32(hi) + 1, Col: off - lineIdx[hi] + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
