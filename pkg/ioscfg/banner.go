package ioscfg

import (
	"regexp"
	"strings"
)

var (
	bannerCmd     = regexp.MustCompile(`(?m)^banner (\w+)`)
	bannerRemoved = regexp.MustCompile(`banner \w+ \^C\^C`)
)

// ExtractBanners removes multi-line "banner <type> ^C...^C" bodies from
// config and returns them keyed by "banner <type>".
func ExtractBanners(config string) (string, map[string]string) {
	banners := map[string]string{}
	var bodies []string
	for _, m := range bannerCmd.FindAllStringSubmatch(config, -1) {
		re := regexp.MustCompile(`(?s)banner ` + regexp.QuoteMeta(m[1]) + ` \^C(.+?)\^C`)
		body := re.FindStringSubmatch(config)
		if body == nil {
			continue
		}
		banners["banner "+m[1]] = strings.TrimSpace(body[1])
		bodies = append(bodies, body[1])
	}
	for _, body := range bodies {
		config = strings.ReplaceAll(config, body, "")
	}
	config = bannerRemoved.ReplaceAllString(config, "!! banner removed")
	return config, banners
}

// DiffBanners returns the wanted banners whose text differs from have.
func DiffBanners(want, have map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range want {
		if h, ok := have[k]; !ok || h != v {
			out[k] = v
		}
	}
	return out
}
