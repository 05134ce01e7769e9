package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quollsoft/passgate/internal/flow"
	"github.com/quollsoft/passgate/internal/forms"
	"github.com/quollsoft/passgate/internal/notify"
	"github.com/quollsoft/passgate/internal/session"
	"github.com/quollsoft/passgate/pkg/authgw"
)

func clientCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Interactive terminal client for the authentication flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context(), serverURL)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the authentication server")
	return cmd
}

// viewScopes maps each view to the form it renders.
var viewScopes = map[flow.View]string{
	flow.ViewLogin:               flow.ScopeLogin,
	flow.ViewSignup:              flow.ScopeSignup,
	flow.ViewTwoFactor:           flow.ScopeTwoFA,
	flow.ViewForgotPasswordStep1: flow.ScopeForgot,
	flow.ViewForgotPasswordStep2: flow.ScopeForgot2,
	flow.ViewSettings:            flow.ScopeSettings,
}

var viewNames = map[string]flow.View{
	"login":    flow.ViewLogin,
	"signup":   flow.ViewSignup,
	"2fa":      flow.ViewTwoFactor,
	"forgot":   flow.ViewForgotPasswordStep1,
	"forgot2":  flow.ViewForgotPasswordStep2,
	"settings": flow.ViewSettings,
}

func runClient(ctx context.Context, serverURL string) error {
	nc := notify.NewCenter()
	nc.Subscribe(func(n notify.Notification) {
		switch n.Kind {
		case notify.KindToast:
			fmt.Printf("  [%s] %s: %s\n", n.Severity, n.Title, n.Body)
		case notify.KindInlineAlert:
			fmt.Printf("  [%s/%s] %s\n", n.Scope, n.Severity, n.Body)
		}
	})

	c := flow.New(flow.Config{
		Gateway: authgw.NewClient(serverURL),
		Notify:  nc,
	})
	c.StartProbe(ctx)

	fmt.Printf("connected to %s\n", serverURL)
	printHelp()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		printState(c)
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		handleCommand(ctx, c, scanner, line)
	}
}

func printState(c *flow.Controller) {
	view := c.View()
	fmt.Printf("\n-- %s", view)
	if c.Session().IsAuthenticated() {
		tf := c.Session().TwoFactor()
		fmt.Printf(" (signed in as %s, 2FA: %v/%s)", c.Session().Email(), tf.Enabled, tf.Method)
	}
	fmt.Println(" --")

	if fm := c.Form(viewScopes[view]); fm != nil {
		for _, f := range fm.Fields() {
			value := f.Value()
			if f.Kind == forms.KindPassword {
				value = strings.Repeat("*", len(value))
			}
			fmt.Printf("  %s: %s", f.DisplayLabel(), value)
			if msg := f.Error(); msg != "" {
				fmt.Printf("  <%s>", msg)
			}
			fmt.Println()
		}
	}
}

func handleCommand(ctx context.Context, c *flow.Controller, scanner *bufio.Scanner, line string) {
	parts := strings.SplitN(line, " ", 3)
	switch parts[0] {
	case "help":
		printHelp()

	case "set":
		if len(parts) < 3 {
			fmt.Println("usage: set <field> <value>")
			return
		}
		c.SetField(viewScopes[c.View()], parts[1], parts[2])

	case "submit":
		c.Dispatch(ctx, submitCommandFor(c.View()))

	case "nav":
		if len(parts) < 2 {
			fmt.Println("usage: nav <login|signup|2fa|forgot|forgot2|settings>")
			return
		}
		view, ok := viewNames[parts[1]]
		if !ok {
			fmt.Println("unknown view:", parts[1])
			return
		}
		c.Dispatch(ctx, flow.NavigatedTo{View: view})

	case "2fa":
		if len(parts) < 2 {
			fmt.Println("usage: 2fa <on|off> [method]")
			return
		}
		method := string(c.Session().TwoFactor().Method)
		if len(parts) == 3 {
			method = parts[2]
		}
		fmt.Print("are you sure? [y/N] ")
		confirmed := scanner.Scan() && strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
		c.Dispatch(ctx, flow.TwoFactorToggled{
			Enable:    parts[1] == "on",
			Method:    session.TwoFactorMethod(method),
			Confirmed: confirmed,
		})

	case "method":
		if len(parts) < 2 {
			fmt.Println("usage: method <Email|SMS|AuthenticatorApp>")
			return
		}
		c.Dispatch(ctx, flow.TwoFactorMethodChanged{Method: session.TwoFactorMethod(parts[1])})

	case "delete":
		fmt.Print("type DELETE to confirm: ")
		var confirmation string
		if scanner.Scan() {
			confirmation = strings.TrimSpace(scanner.Text())
		}
		c.Dispatch(ctx, flow.AccountDeleteRequested{Confirmation: confirmation})

	case "logout":
		c.Dispatch(ctx, flow.LogoutRequested{})

	default:
		fmt.Println("unknown command:", parts[0])
	}
}

func submitCommandFor(view flow.View) flow.Command {
	switch view {
	case flow.ViewSignup:
		return flow.SignupSubmitted{}
	case flow.ViewTwoFactor:
		return flow.TwoFactorSubmitted{}
	case flow.ViewForgotPasswordStep1:
		return flow.ForgotPasswordSubmitted{}
	case flow.ViewForgotPasswordStep2:
		return flow.PasswordResetSubmitted{}
	default:
		return flow.LoginSubmitted{}
	}
}

func printHelp() {
	fmt.Println(`commands:
  set <field> <value>   fill a field on the current form
  submit                submit the current form
  nav <view>            go to login, signup, 2fa, forgot, forgot2 or settings
  2fa <on|off> [method] toggle 2FA (asks for confirmation)
  method <name>         change the 2FA delivery method
  delete                delete the account (asks for the confirmation literal)
  logout                sign out
  quit                  exit`)
}
