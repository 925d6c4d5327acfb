package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jobportal/jobview/common/view"
)

// ShowAction loads a job and prints its detail page
func ShowAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd, cmd.String("env"), cmd.String("user"))
	if err != nil {
		return err
	}
	defer appCtx.Close(ctx)

	if err := appCtx.View.Sync(ctx, cmd.String("job")); err != nil {
		return err
	}
	return appCtx.Print()
}

// ApplyAction applies the user to a job and prints the updated page.
// Applying twice is not an error; the page shows the job as applied.
// A rejected application has already printed its toast when this returns.
func ApplyAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd, cmd.String("env"), cmd.String("user"))
	if err != nil {
		return err
	}
	defer appCtx.Close(ctx)

	if err := appCtx.View.Sync(ctx, cmd.String("job")); err != nil {
		return err
	}

	err = appCtx.View.Apply(ctx)
	switch {
	case errors.Is(err, view.ErrAlreadyApplied):
		fmt.Fprintln(appCtx.Out, "You have already applied to this job.")
	case err != nil:
		return err
	}

	fmt.Fprintln(appCtx.Out)
	return appCtx.Print()
}
