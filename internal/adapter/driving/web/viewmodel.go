package web

import (
	"fmt"
	"net/url"

	vm "github.com/ericfisherdev/gitswitch/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

// toIdentityViewModels converts identities to rows, counting the bindings
// that reference each one.
func toIdentityViewModels(identities []model.Identity, bindings *application.BindingStore) []vm.IdentityViewModel {
	out := make([]vm.IdentityViewModel, 0, len(identities))
	for _, id := range identities {
		out = append(out, vm.IdentityViewModel{
			ID:             id.ID,
			Label:          id.Label,
			Name:           id.Name,
			Email:          id.Email,
			SSHKeyPath:     id.SSHKeyPath,
			GitHubUsername: id.GitHubUsername,
			BindingCount:   len(bindings.GetBindingsForIdentity(id.ID)),
			DeletePath:     "/identities/" + url.PathEscape(id.ID) + "/delete",
		})
	}
	return out
}

func toRepoViewModel(info model.RepoInfo, a application.RepoAnnotation) vm.RepoViewModel {
	return vm.RepoViewModel{
		Name:        info.Name,
		Path:        info.Path,
		Description: a.Description,
		Tooltip:     a.Tooltip,
		Mismatch:    a.Mismatch,
	}
}

func toDecisionViewModel(d model.Decision) vm.DecisionViewModel {
	msg := d.Mismatch.Reason
	if c, e := d.Mismatch.Current, d.Mismatch.Expected; c != nil && e != nil {
		msg = fmt.Sprintf("%s: current %s <%s>, expected %s <%s>", d.Mismatch.Reason, c.Name, c.Email, e.Name, e.Email)
	}
	return vm.DecisionViewModel{RepoPath: d.RepoPath, Message: msg}
}
