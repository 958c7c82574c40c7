package model

import (
	"regexp"
	"strings"
)

var providerHosts = []struct {
	host     string
	provider Provider
	owner    *regexp.Regexp
}{
	{"github.com", ProviderGitHub, regexp.MustCompile(`github\.com[/:]([^/]+)`)},
	{"gitlab.com", ProviderGitLab, regexp.MustCompile(`gitlab\.com[/:]([^/]+)`)},
	{"bitbucket.org", ProviderBitbucket, regexp.MustCompile(`bitbucket\.org[/:]([^/]+)`)},
}

// ProviderFromRemotes classifies remote URLs (or raw `git remote -v` output)
// by the first known host they mention, checked in GitHub, GitLab, Bitbucket
// order.
func ProviderFromRemotes(remotes ...string) Provider {
	joined := strings.Join(remotes, "\n")
	for _, h := range providerHosts {
		if strings.Contains(joined, h.host) {
			return h.provider
		}
	}
	return ProviderUnknown
}

// OwnerFromRemote returns the account or organization segment of a hosted
// remote URL, e.g. "octocat" for git@github.com:octocat/hello.git.
func OwnerFromRemote(url string) string {
	for _, h := range providerHosts {
		if m := h.owner.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
