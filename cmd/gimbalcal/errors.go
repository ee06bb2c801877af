package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gimbalcal/gimbalcal/pkg/endpoint"
	"github.com/gimbalcal/gimbalcal/pkg/prompt"
)

// handleCmdError prints err with a hint for the user and returns the process
// exit code.
func handleCmdError(w io.Writer, err error) int {
	code := 1

	var st *ExitStatus
	if errors.As(err, &st) {
		code = st.Code
		if st.Err == nil {
			// Only the delegate failed; its output is already on screen.
			return code
		}
		err = st.Err
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, prompt.ErrInterrupted):
		fmt.Fprintln(w, "\nInterrupted.")
		return code
	case errors.Is(err, endpoint.ErrNoEndpoints):
		fmt.Fprintln(w, "\nError: No serial ports available.")
		fmt.Fprintln(w, "  - Connect the drone to this computer over USB and power it on")
		fmt.Fprintln(w, "  - Then run gimbalcal again")
	case errors.Is(err, prompt.ErrInvalidSelection):
		fmt.Fprintf(w, "\nError: %v\n", err)
		fmt.Fprintln(w, "Invalid selection. Please run gimbalcal again and enter one of the listed numbers.")
	case errors.Is(err, endpoint.ErrEndpointUnavailable):
		fmt.Fprintf(w, "\nError: %v\n", err)
		fmt.Fprintln(w, "  - Is another program (e.g. DJI Assistant) using the port?")
		fmt.Fprintln(w, "  - Do you have permission to open it?")
	default:
		fmt.Fprintf(w, "\nError: %v\n", err)
	}

	return code
}
