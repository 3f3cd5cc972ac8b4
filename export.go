package dumbbell

import (
	"fmt"
	"os"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// ExportConfig configures the on disk recording of a propagation.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	Timestamp bool // append a file creation timestamp to the name
}

// IsUseless returns whether this configuration would not export anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

// PropState is one exported propagation step.
type PropState struct {
	DT    time.Time // wall clock time of this step
	T     float64   // simulation time in seconds
	State []float64
}

// createCSVFile returns a file which requires a defer close statement!
func createCSVFile(outputDir string, conf ExportConfig, epoch time.Time) *os.File {
	filename := fmt.Sprintf("%s/traj-%s.csv", outputDir, conf.Filename)
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/traj-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", outputDir, conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <jd> <t> <pos> <vel> <R row major> <ang vel>
#   Position in km, velocity in km/s, angular velocity in rad/s
#   Simulation epoch (UTC): %s
jd,t,x,y,z,vx,vy,vz,r11,r12,r13,r21,r22,r23,r31,r32,r33,wx,wy,wz`, time.Now().UTC(), epoch.UTC()))
	return f
}

// StreamStates streams the propagation states of the channel to a CSV file.
// It returns once the channel is closed.
func StreamStates(outputDir string, conf ExportConfig, stateChan <-chan PropState) {
	var f *os.File
	defer func() {
		if f != nil {
			f.Close()
		}
	}()
	for state := range stateChan {
		if f == nil {
			f = createCSVFile(outputDir, conf, state.DT)
		}
		row := fmt.Sprintf("\n%.8f,%f", julian.TimeToJD(state.DT), state.T)
		for _, v := range state.State {
			row += fmt.Sprintf(",%.12e", v)
		}
		if _, err := f.WriteString(row); err != nil {
			panic(err)
		}
	}
}
