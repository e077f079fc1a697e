package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/trustsphere/trustsphere/business/core/attendance"
	"github.com/trustsphere/trustsphere/business/core/election"
	"github.com/trustsphere/trustsphere/business/sys/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo session and election in the mirror database",
	Run:   seedRun,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seedRun(cmd *cobra.Command, args []string) {
	db, err := database.New(dbPath)
	if err != nil {
		log.Fatal(err)
	}

	session, err := attendance.NewStore(db).Create(attendance.NewSession{
		Title:       "Distributed Systems Lecture",
		QRSecret:    "demo-secret",
		QRExpiresAt: time.Now().Add(2 * time.Hour),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("session :", session.ID)
	fmt.Println("qrsecret:", session.QRSecret)

	elec, err := election.NewStore(db).Create(election.NewElection{
		Title:  "Student Council President",
		EndsAt: time.Now().Add(72 * time.Hour),
		Candidates: []election.NewCandidate{
			{Name: "Asha Verma", Party: "Unity"},
			{Name: "Rohan Iyer", Party: "Progress"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("election:", elec.ID)
}
