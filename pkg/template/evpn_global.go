package template

import (
	"regexp"

	"github.com/amalmborg97/cisco.ios/pkg/model"
)

func init() {
	rules := []*Rule{
		{
			Kind:   model.KindEVPNReplicationType,
			Regexp: regexp.MustCompile(`^replication-type (?P<type>ingress|static|p2mp|mp2mp)$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				return "", m["type"], nil
			},
			Render: func(a model.Attr) string { return "replication-type " + stringValue(a) },
		},
		{
			Kind:   model.KindEVPNRouterID,
			Regexp: regexp.MustCompile(`^router-id (?P<interface>\S+)$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				return "", m["interface"], nil
			},
			Render: func(a model.Attr) string { return "router-id " + stringValue(a) },
		},
		flagRule(model.KindEVPNDefaultGateway, "default-gateway advertise"),
		flagRule(model.KindEVPNLoggingPeerState, "logging peer state"),
		flagRule(model.KindEVPNRouteTargetAutoVNI, "route-target auto vni"),
		{
			Kind:   model.KindEVPNIPLocalLearning,
			Regexp: regexp.MustCompile(`^ip local-learning (?P<mode>disable|enable)$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				return "", m["mode"], nil
			},
			Render: func(a model.Attr) string { return "ip local-learning " + stringValue(a) },
		},
		flagRule(model.KindEVPNFloodingSuppressARP, "flooding-suppression address-resolution disable"),
	}
	for i, r := range rules {
		r.Rank = i + 1
	}

	register(&Template{
		Feature: model.FeatureEVPNGlobal,
		Scope:   regexp.MustCompile(`^l2vpn evpn$`),
		Context: func(string) string { return "l2vpn evpn" },
		Rules:   rules,
	})
}
