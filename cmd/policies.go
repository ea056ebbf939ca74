package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/backoff-sim/backoff-sim/sim"
)

var (
	growPolicy  string // Policy to expand
	growInitial int    // Starting window size (0 = policy default)
	growSteps   int    // Number of grow steps to print
)

// policiesCmd lists the registered growth policies
var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List growth policies and their default initial window sizes",
	Run: func(cmd *cobra.Command, args []string) {
		printPolicies(cmd.OutOrStdout())
	},
}

// growCmd prints the window sizes a policy produces round by round
var growCmd = &cobra.Command{
	Use:   "grow",
	Short: "Print the window size sequence of a growth policy",
	Run: func(cmd *cobra.Command, args []string) {
		if !sim.IsValidGrowthPolicy(growPolicy) {
			logrus.Fatalf("unknown growth policy %q; valid: %v", growPolicy, sim.ValidGrowthPolicyNames())
		}
		initial := growInitial
		if initial == 0 {
			initial = sim.DefaultInitialWindowSize(growPolicy)
		}
		fn := sim.NewGrowthPolicy(growPolicy)
		if err := sim.ValidateGrowth(fn, initial); err != nil {
			logrus.Fatalf("%v", err)
		}
		for i, size := range growthSequence(fn, initial, growSteps) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\n", i, size)
		}
	},
}

func printPolicies(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POLICY\tINITIAL\tGROWTH")
	for _, name := range sim.ValidGrowthPolicyNames() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, sim.DefaultInitialWindowSize(name), sim.DescribeGrowthPolicy(name))
	}
	_ = w.Flush()
}

// growthSequence returns initial followed by steps successive sizes.
// Stops early if the policy stalls.
func growthSequence(fn sim.GrowthFunc, initial, steps int) []int {
	seq := []int{initial}
	size := initial
	for i := 0; i < steps; i++ {
		next := fn(size)
		if next <= size {
			logrus.Warnf("policy stalled at window size %d after %d steps", size, i)
			break
		}
		seq = append(seq, next)
		size = next
	}
	return seq
}

func init() {
	growCmd.Flags().StringVar(&growPolicy, "policy", sim.PolicyLogLog, "Growth policy")
	growCmd.Flags().IntVar(&growInitial, "initial", 0, "Initial window size (0 = policy default)")
	growCmd.Flags().IntVar(&growSteps, "steps", 10, "Number of grow steps")
}
