package session_test

import (
	"fmt"

	"github.com/reactivekit/starcell/session"
)

func Example() {
	s, err := session.New(session.Config{Key: "notebook"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	s.Submit("price = 4", "cell-1")
	s.Submit("total = price * 3", "cell-2")

	// redefining price recomputes total
	results, _ := s.Submit("price = 5", "cell-1")

	fmt.Println("cells run:", len(results))
	fmt.Println("total:", s.Namespace()["total"])
	// Output:
	// cells run: 2
	// total: 15
}
