package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// DefaultFont 是找不到字体时使用的内置字体。
const DefaultFont = "regular"

var builtin = map[string][]byte{
	"regular":      goregular.TTF,
	"bold":         gobold.TTF,
	"italic":       goitalic.TTF,
	"bolditalic":   gobolditalic.TTF,
	"medium":       gomedium.TTF,
	"mediumitalic": gomediumitalic.TTF,
	"mono":         gomono.TTF,
	"monobold":     gomonobold.TTF,
	"smallcaps":    gosmallcaps.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:bold"、"bold" 或 "Go-Bold.ttf"。
func Load(name string) ([]byte, error) {
	key := normalize(name)
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在（可用：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回全部内置字体名。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for k := range builtin {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "embed:")
	s = strings.TrimSuffix(s, ".ttf")
	s = strings.TrimPrefix(s, "go-")
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	if s == "" {
		return DefaultFont
	}
	return s
}
