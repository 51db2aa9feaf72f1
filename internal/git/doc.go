// Package git is the fetch side of an import: it prepares the bare repository
// that receives the mirror and transfers every ref from the source into it.
//
// All operations run in process through go-git; no git binary is required.
//
// Example Usage:
//
//	if err := git.InitShell("/srv/git/acme/widgets.git"); err != nil {
//	    return err
//	}
//	err := git.MirrorFetch(ctx, git.FetchOptions{
//	    Path:      "/srv/git/acme/widgets.git",
//	    SourceURI: "https://github.com/acme/widgets.git",
//	    Auth:      auth,
//	    Progress:  progress.NewSidebandWriter(tracker),
//	})
//
// Error Handling:
//
// Failures are returned as *errors.ImportError. An existing destination is
// KindAlreadyExists; anything else that goes wrong while preparing the
// destination or talking to the source is KindCloneFailed. Nothing is retried
// and nothing is cleaned up here; a partially written destination stays on
// disk for the caller to inspect or remove.
//
// Thread Safety:
//
// Operations on distinct paths may run concurrently. Callers must not fetch
// into the same path from more than one goroutine.
package git
