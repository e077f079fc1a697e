package ratelimit_test

import (
	"errors"
	"testing"
	"time"

	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestAdmit(t *testing.T) {
	t.Log("Given the need to rate limit submissions per address.")
	{
		t.Log("\tTest 0:\tWhen an address stays within the limit.")
		{
			limiter := ratelimit.New(10, time.Minute)
			defer limiter.Stop()

			for i := 0; i < 10; i++ {
				if err := limiter.Admit("ADDR1"); err != nil {
					t.Fatalf("\t%s\tShould admit request %d: %v", failed, i+1, err)
				}
			}
			t.Logf("\t%s\tShould admit all requests within the limit.", success)

			if err := limiter.Admit("ADDR1"); !errors.Is(err, ratelimit.ErrLimitExceeded) {
				t.Fatalf("\t%s\tShould reject the request over the limit: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the request over the limit.", success)
		}

		t.Log("\tTest 1:\tWhen two addresses share the limiter.")
		{
			limiter := ratelimit.New(1, time.Minute)
			defer limiter.Stop()

			if err := limiter.Admit("ADDR1"); err != nil {
				t.Fatalf("\t%s\tShould admit the first address: %v", failed, err)
			}
			t.Logf("\t%s\tShould admit the first address.", success)

			if err := limiter.Admit("ADDR2"); err != nil {
				t.Fatalf("\t%s\tShould count each address separately: %v", failed, err)
			}
			t.Logf("\t%s\tShould count each address separately.", success)
		}

		t.Log("\tTest 2:\tWhen the window expires.")
		{
			limiter := ratelimit.New(1, 50*time.Millisecond)
			defer limiter.Stop()

			if err := limiter.Admit("ADDR1"); err != nil {
				t.Fatalf("\t%s\tShould admit the first request: %v", failed, err)
			}

			if err := limiter.Admit("ADDR1"); !errors.Is(err, ratelimit.ErrLimitExceeded) {
				t.Fatalf("\t%s\tShould reject within the window: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject within the window.", success)

			time.Sleep(120 * time.Millisecond)

			if err := limiter.Admit("ADDR1"); err != nil {
				t.Fatalf("\t%s\tShould admit again after the window expires: %v", failed, err)
			}
			t.Logf("\t%s\tShould admit again after the window expires.", success)
		}
	}
}
