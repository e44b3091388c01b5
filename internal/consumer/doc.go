// Package consumer implements the live event consumer: a blocking
// subscription loop that audits every bus envelope into the event log and
// schedules a delayed reminder for each newly created task.
package consumer
