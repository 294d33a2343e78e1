package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/app"
	"github.com/okian/skillmatrix/internal/domain/model"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the skills and scores of the signed-in user or the selected employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				return rt.session.Load(ctx)
			})
		},
	}
}

func newRateCmd(opts *rootOptions) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "rate <skill-id> <score>",
		Short: "Submit one self or manager score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			skillID, err := parseID("skill-id", args[0])
			if err != nil {
				return err
			}
			score, err := parseScore(args[1])
			if err != nil {
				return err
			}
			kind, err := model.ParseRaterKind(as)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if err := rt.session.Load(ctx); err != nil {
					return err
				}
				outcome, err := rt.session.Submit(ctx, skillID, score, kind)
				if err != nil {
					return err
				}
				if outcome != app.OutcomeSuccess {
					return fmt.Errorf("submission %s", outcome)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", string(model.RaterSelf), "rater kind: self or manager")
	return cmd
}

func newAssessCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assess <skill-id=score>...",
		Short: "Save several manager scores for the selected employee in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := make([]model.PendingChange, 0, len(args))
			for _, a := range args {
				id, score, ok := strings.Cut(a, "=")
				if !ok {
					return fmt.Errorf("expected skill-id=score, got %q", a)
				}
				skillID, err := parseID("skill-id", id)
				if err != nil {
					return err
				}
				s, err := parseScore(score)
				if err != nil {
					return err
				}
				changes = append(changes, model.PendingChange{SkillID: skillID, Score: s})
			}
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if err := rt.session.Load(ctx); err != nil {
					return err
				}
				if err := rt.session.OpenAssessment(ctx); err != nil {
					return err
				}
				for _, ch := range changes {
					if err := rt.session.Stage(ctx, ch.SkillID, ch.Score); err != nil {
						return fmt.Errorf("skill %d: %w", ch.SkillID, err)
					}
				}
				_, err := rt.session.SaveAssessments(ctx)
				return err
			})
		},
	}
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <user1> <user2>",
		Short: "Compare the final scores of two employees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u1, err := parseID("user1", args[0])
			if err != nil {
				return err
			}
			u2, err := parseID("user2", args[1])
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				_, err := rt.session.Compare(ctx, u1, u2)
				return err
			})
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		bySkill  bool
		minScore int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find users by name, or employees by skill with --skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if bySkill {
					_, err := rt.session.SearchBySkill(ctx, args[0], model.Score(minScore))
					return err
				}
				_, err := rt.session.SearchUsers(ctx, args[0])
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&bySkill, "skill", false, "treat the query as a skill name")
	cmd.Flags().IntVar(&minScore, "min", 1, "minimum final score for --skill")
	return cmd
}

func newSkillsCmd(opts *rootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List the skill catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if _, err := rt.session.LoadSkills(ctx); err != nil {
					return err
				}
				if filter != "" {
					rt.session.FilterSkills(filter)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy filter on name or category")

	var (
		id int
		in client.SkillInput
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Create a skill, or update one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if _, err := rt.session.LoadSkills(ctx); err != nil {
					return err
				}
				if err := rt.session.OpenSkillModal(id); err != nil {
					return err
				}
				_, err := rt.session.SaveSkill(ctx, id, in)
				return err
			})
		},
	}
	save.Flags().IntVar(&id, "id", 0, "skill to update")
	save.Flags().StringVar(&in.Name, "name", "", "skill name")
	save.Flags().StringVar(&in.Category, "category", "", "skill category")
	save.Flags().StringVar(&in.Description, "description", "", "skill description")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a skill that has no assessments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skillID, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if _, err := rt.session.LoadSkills(ctx); err != nil {
					return err
				}
				return rt.session.DeleteSkill(ctx, skillID)
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename-category <name> <new-name>",
		Short: "Rename a category for every skill in it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				return rt.session.RenameCategory(ctx, args[0], args[1])
			})
		},
	}

	cmd.AddCommand(save, del, rename)
	return cmd
}

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var (
		id   int
		role string
		in   client.UserInput
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Create an account, or update one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Role = model.Role(role)
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if err := rt.session.OpenUserModal(ctx, id); err != nil {
					return err
				}
				newID, err := rt.session.SaveUser(ctx, id, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(rt.out, "user %d saved\n", newID)
				return err
			})
		},
	}
	save.Flags().IntVar(&id, "id", 0, "account to update")
	save.Flags().StringVar(&in.FullName, "full-name", "", "full name")
	save.Flags().StringVar(&in.Login, "login", "", "login")
	save.Flags().StringVar(&in.Email, "email", "", "email address")
	save.Flags().StringVar(&role, "account-role", string(model.RoleEmployee), "role of the account")
	save.Flags().StringVar(&in.Position, "position", "", "job title")
	save.Flags().IntVar(&in.DepartmentID, "department", 0, "department id")
	save.Flags().StringVar(&in.Status, "status", "", "active or inactive")
	save.Flags().StringVar(&in.Password, "password", "", "password, required for new accounts")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				return rt.session.DeleteUser(ctx, userID)
			})
		},
	}

	cmd.AddCommand(save, del)
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters, plus analytics for HR and admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				_, err := rt.session.LoadDashboard(ctx)
				return err
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <assessments|users|skills>",
		Short: "Download a report as CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := client.ParseExportKind(args[0])
			if err != nil {
				return err
			}
			f, err := app.ParseFormat(format)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, rt *env) error {
				if out == "" || out == "-" {
					// The report owns stdout; the view goes to stderr.
					w := rt.out
					rt.out = cmd.ErrOrStderr()
					return rt.session.Export(ctx, kind, f, w)
				}
				return writeFile(out, func(w io.Writer) error {
					return rt.session.Export(ctx, kind, f, w)
				})
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(app.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}

func writeFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return fn(f)
}

func parseID(name, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return id, nil
}

func parseScore(s string) (model.Score, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("score must be an integer, got %q", s)
	}
	score := model.Score(n)
	if !score.Valid() {
		return 0, fmt.Errorf("%w: %d", app.ErrInvalidScore, n)
	}
	return score, nil
}
