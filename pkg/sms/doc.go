// Package sms sends text messages.
//
// SNSSender publishes directly to phone numbers through Amazon SNS using the
// AWS SDK v2; LogSender only logs. New selects one by Config.Driver.
//
// Phone numbers are normalized to E.164 before sending. Truncate and Fold
// help keep messages to a single GSM-7 segment.
package sms
