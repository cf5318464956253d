package param

import "context"

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// Resolve returns value when set, otherwise the parameter at path. Both empty
// yields "".
func Resolve(ctx context.Context, f Fetcher, value, path string) (string, error) {
	if value != "" || path == "" {
		return value, nil
	}
	return f.Fetch(ctx, path)
}

// ResolveAll is Resolve for parameter lists.
func ResolveAll(ctx context.Context, f Fetcher, values []string, path string) ([]string, error) {
	if len(values) > 0 || path == "" {
		return values, nil
	}
	return f.FetchAll(ctx, path)
}
