package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NicabarNimble/go-gitimport/internal/errors"
)

// ResolvePath returns the destination <root>/<organisation>/<repository>.git
// and fails with AlreadyExists if anything is already there.
func ResolvePath(root, organisation, repository string) (string, error) {
	if err := validateName("organisation", organisation); err != nil {
		return "", err
	}
	if err := validateName("repository", repository); err != nil {
		return "", err
	}

	path := filepath.Join(root, organisation, repository+".git")
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return "", errors.NewAlreadyExists(organisation+"/"+repository, path)
	case os.IsNotExist(err):
		return path, nil
	default:
		return "", fmt.Errorf("failed to check destination %s: %w", path, err)
	}
}

func validateName(kind, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%s cannot be empty", kind)
	case name == "." || name == "..":
		return fmt.Errorf("invalid %s name %q", kind, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%s name %q cannot contain path separators", kind, name)
	}
	return nil
}
