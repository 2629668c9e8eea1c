package checkout

import "strings"

const (
	successPath = "/bag?success=1"
	cancelPath  = "/bag?canceled=1"
)

// ResolveOrigin picks the site origin for redirect URLs: the Origin header,
// then https://{Host}, then the configured public URL.
func ResolveOrigin(origin, host, publicSiteURL string) (string, error) {
	if o := strings.TrimSpace(origin); o != "" {
		return o, nil
	}
	if h := strings.TrimSpace(host); h != "" {
		return "https://" + h, nil
	}
	if u := strings.TrimRight(strings.TrimSpace(publicSiteURL), "/"); u != "" {
		return u, nil
	}
	return "", ErrOriginUnresolved
}

// RedirectURLs returns the success and cancel URLs for origin.
func RedirectURLs(origin string) (success, cancel string) {
	return origin + successPath, origin + cancelPath
}
