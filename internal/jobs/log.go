package jobs

import "github.com/sirupsen/logrus"

func logger(job Job) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"job_type": job.Type,
		"attempt":  job.Attempt,
	})
}
