package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fitsoul/internal/config"
	"fitsoul/internal/firebase"
	"fitsoul/internal/google"
	"fitsoul/internal/repository"
	"fitsoul/internal/session"
)

// Run is the composition root: it wires the identity client, the
// Firestore mirror, the gateway, the federated sign-in helper and the
// session coordinator, then drives them from a terminal prompt.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity := firebase.NewIdentityClient(cfg.FirebaseAPIKey)

	store, err := firebase.NewUserDocStore(ctx, cfg.FirebaseProjectID, cfg.FirebaseClientEmail, cfg.FirebasePrivateKey)
	if err != nil {
		return fmt.Errorf("failed to open firestore: %w", err)
	}
	defer store.Close()

	gateway := repository.NewAuthRepository(identity, store)
	coordinator := session.NewCoordinator(gateway, identity)

	signIn := google.NewSignInHelper()
	signIn.Initialize(cfg.GoogleWebClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectPort)

	unsubscribe := watchStates(coordinator)
	defer unsubscribe()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		coordinator.Close()
		return nil
	})
	g.Go(func() error {
		defer stop()
		return promptLoop(ctx, coordinator, gateway, signIn, os.Stdin)
	})

	return g.Wait()
}

// watchStates prints every observable transition so the prompt user
// sees what a screen would render.
func watchStates(coordinator *session.Coordinator) func() {
	cancelUI := coordinator.UiState().Subscribe(func(state session.UiState) {
		switch {
		case state.Loading:
			fmt.Println("... working")
		case state.ErrorMessage != "":
			fmt.Println("error:", state.ErrorMessage)
		case state.SuccessMessage != "":
			fmt.Println(state.SuccessMessage)
		}
	})
	cancelAuth := coordinator.AuthState().Subscribe(func(state session.AuthState) {
		switch {
		case state.IsAuthenticated():
			fmt.Printf("signed in as %s (%s)\n", state.User().Email, state.User().UID)
		case state.IsUnauthenticated():
			fmt.Println("signed out")
		}
	})
	cancelErrors := coordinator.ValidationErrors().Subscribe(func(errors map[string]string) {
		for field, message := range errors {
			fmt.Printf("%s: %s\n", field, message)
		}
	})
	return func() {
		cancelUI()
		cancelAuth()
		cancelErrors()
	}
}

type googleListener struct {
	coordinator *session.Coordinator
}

func (l *googleListener) OnSuccess(idToken string) {
	l.coordinator.SignInWithGoogle(idToken)
}

func (l *googleListener) OnFailure(message string) {
	log.Printf("[GoogleSignIn] %s", message)
}

func promptLoop(ctx context.Context, coordinator *session.Coordinator, gateway repository.AuthGateway, signIn *google.SignInHelper, in io.Reader) error {
	fmt.Println("commands: signin <email> <password> | signup <email> <password> | google | reset <email> | verify | signout | clear | quit")

	// Scanning happens on its own goroutine so Ctrl-C is not stuck
	// behind a blocked read. On cancellation the goroutine is abandoned
	// mid-Scan; it dies with the process.
	lines := make(chan string)
	scanDone := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanDone <- scanner.Err()
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanDone:
			return err
		case line = <-lines:
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "signin":
			if len(fields) != 3 {
				fmt.Println("usage: signin <email> <password>")
				continue
			}
			coordinator.SignInWithEmail(fields[1], fields[2])
		case "signup":
			if len(fields) != 3 {
				fmt.Println("usage: signup <email> <password>")
				continue
			}
			coordinator.SignUpWithEmail(fields[1], fields[2])
		case "google":
			go signIn.SignIn(ctx, &googleListener{coordinator: coordinator})
		case "reset":
			if len(fields) != 2 {
				fmt.Println("usage: reset <email>")
				continue
			}
			coordinator.ResetPassword(fields[1])
		case "verify":
			if result := gateway.SendEmailVerification(ctx); result.IsFailure() {
				fmt.Println("error:", result.Err())
			} else {
				fmt.Println("Verification email sent")
			}
			fmt.Println("email verified:", gateway.IsEmailVerified())
		case "signout":
			coordinator.SignOut()
			signIn.SignOut()
		case "clear":
			coordinator.ClearErrors()
		case "quit":
			return nil
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
