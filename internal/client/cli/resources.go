package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/sellingcar/internal/client/models"
	"github.com/dmitrijs2005/sellingcar/internal/client/view"
)

var errNoView = errors.New("no resource open")

// Home prints every resource section of the catalog.
func (a *App) Home(ctx context.Context) error {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tTITLE\tKEY\tACTIONS")
	for _, d := range a.catalog.All() {
		var acts []string
		if d.Capabilities.Create {
			acts = append(acts, "add")
		}
		if d.Capabilities.Edit {
			acts = append(acts, "edit")
		}
		if d.Capabilities.Delete {
			acts = append(acts, "delete")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Title, strings.Join(d.Key, ","), strings.Join(acts, ","))
	}
	_ = tw.Flush()
	_, err := fmt.Fprint(a.out, b.String())
	return err
}

// Open mounts a list view for resource and shows it.
func (a *App) Open(ctx context.Context, resource string) error {
	d, err := a.catalog.Get(resource)
	if err != nil {
		printlnFn(fmt.Sprintf("Unknown resource %q, see 'home'", resource))
		return err
	}
	a.mount(ctx, d)
	return a.render()
}

func (a *App) openView() (*view.View, error) {
	if a.current == nil {
		printlnFn("No resource open, use: open <resource>")
		return nil, errNoView
	}
	return a.current, nil
}

// dispatch routes ev to the open view and renders the result. Errors are
// part of the rendered frame.
func (a *App) dispatch(ctx context.Context, ev view.Event) error {
	v, err := a.openView()
	if err != nil {
		return err
	}
	err = v.Dispatch(ctx, ev)
	if rerr := a.render(); rerr != nil {
		return rerr
	}
	return err
}

func (a *App) render() error {
	if a.current == nil {
		return errNoView
	}
	return a.current.Render(a.out)
}

func (a *App) key(args []string) (models.Key, error) {
	v, err := a.openView()
	if err != nil {
		return nil, err
	}
	k, err := models.ParseKey(v.Descriptor(), args)
	if err != nil {
		printlnFn("error:", err.Error())
		return nil, err
	}
	return k, nil
}

func (a *App) Refresh(ctx context.Context) error {
	return a.dispatch(ctx, view.RefreshIntent{})
}

func (a *App) Add(ctx context.Context) error {
	return a.dispatch(ctx, view.AddIntent{})
}

func (a *App) Edit(ctx context.Context, args []string) error {
	k, err := a.key(args)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, view.EditIntent{Key: k})
}

func (a *App) Set(ctx context.Context, field, value string) error {
	return a.dispatch(ctx, view.FieldChange{Name: field, Value: value})
}

func (a *App) Save(ctx context.Context) error {
	return a.dispatch(ctx, view.SubmitIntent{})
}

func (a *App) Cancel(ctx context.Context) error {
	return a.dispatch(ctx, view.CancelIntent{})
}

func (a *App) Delete(ctx context.Context, args []string) error {
	k, err := a.key(args)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, view.DeleteIntent{Key: k})
}
