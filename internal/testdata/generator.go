// Package testdata provides the demo deck used to seed a fresh database.
package testdata

import (
	"time"

	"github.com/jask/triage/internal/cards"
)

type entry struct {
	id       string
	category cards.Category
	priority cards.Priority
	from     string
	subject  string
	summary  string
	action   string
	attr     string
}

var deck = []entry{
	{"tl1", cards.CategoryTransactionalLeader, cards.PriorityCritical, "Finance Dept <finance@company.com>", "Q4 Budget Approval Required", "Department budget requests need executive sign-off by EOD", "Review & Approve", "Finance Dept"},
	{"tl2", cards.CategoryTransactionalLeader, cards.PriorityHigh, "HR Systems <hr@company.com>", "New Hire Onboarding - Sarah Chen", "Final approval needed for new Engineering Manager start date", "Auto-Route", "HR Systems"},
	{"tl3", cards.CategoryTransactionalLeader, cards.PriorityLow, "IT Updates <security@company.com>", "Monthly Security Report", "Routine security metrics and system updates for your review", "File for Reference", "IT Updates"},

	{"sh1", cards.CategorySalesHunter, cards.PriorityCritical, "Sarah Chen <sarah.chen@techcorp.com>", "Ready to Move Forward", "Ready to schedule demo, budget approved, decision timeline confirmed", "Schedule Demo", "TechCorp Industries"},
	{"sh2", cards.CategorySalesHunter, cards.PriorityCritical, "James Wilson <j.wilson@dataflow.com>", "RFP Submission", "RFP due Friday - requesting proposal submission", "Route to CRM", "DataFlow Systems"},
	{"sh3", cards.CategorySalesHunter, cards.PriorityMedium, "Alex Kim <alex@startupco.io>", "Re: Demo Request", "Initial interest expressed, needs follow-up call", "Follow Up", "StartupCo"},

	{"pc1", cards.CategoryProjectCoordinator, cards.PriorityCritical, "Acme Corp <client@acme.com>", "Client Milestone Review - Due Friday", "Design mockups need approval before development phase begins", "Schedule Review", "Website Redesign"},
	{"pc2", cards.CategoryProjectCoordinator, cards.PriorityHigh, "Beta Program <testing@company.com>", "Beta Testing Feedback Summary", "47 users submitted feedback, 3 critical bugs identified", "File by Project", "Mobile App Launch"},

	{"ei1", cards.CategoryEnterpriseInnovator, cards.PriorityMedium, "MIT Tech Review <newsletter@mittr.com>", "AI Trends Report Q4", "Comprehensive analysis of emerging AI technologies and market applications", "Save for Later", "AI"},
	{"ei2", cards.CategoryEnterpriseInnovator, cards.PriorityHigh, "Innovation Labs <labs@stanford.edu>", "Partnership Opportunity - Stanford Research", "Joint research proposal on next-gen ML applications", "Express Interest", "Research"},

	{"cc1", cards.CategoryCaregiver, cards.PriorityCritical, "Mrs. Anderson <anderson@riverside-elem.edu>", "Field Trip Permission - Due Wednesday", "Museum visit Friday requires signed form by Wed 5 PM", "Sign & Send", "Sophie"},
	{"cc2", cards.CategoryCaregiver, cards.PriorityHigh, "Mr. Thompson <thompson@riverside-middle.edu>", "Assignment Past Due - Math Homework", "Homework from last week not submitted, submit by Friday for partial credit", "Acknowledge", "Max"},
	{"cc3", cards.CategoryCaregiver, cards.PriorityLow, "Riverside Elementary <newsletter@school.edu>", "Weekly Newsletter", "School newsletter with upcoming events and general announcements", "Archive", "Sophie"},

	{"ds1", cards.CategoryDealStacker, cards.PriorityHigh, "TechMart Deals <news@techmart-deals.com>", "Flash Sale: Premium Headphones", "50% off with code AUDIO50, expires in 6 hours", "Claim Deal", "TechMart"},
	{"ds2", cards.CategoryDealStacker, cards.PriorityLow, "FashionHub <style@fashionhub.com>", "Extra 30% Off Fall Collection", "Stacks with sale, free shipping over $50", "Not Interested", "FashionHub"},
	{"ds3", cards.CategoryDealStacker, cards.PriorityMedium, "ElectroWorld <deals@electroworld.com>", "Limited Time: 4K Monitor Deal", "4K monitor down to $549.99 for two days", "Compare Prices", "ElectroWorld"},
	{"ds4", cards.CategoryDealStacker, cards.PriorityMedium, "TechMart Deals <news@techmart-deals.com>", "Weekend Doorbusters", "Laptops and tablets up to 40% off this weekend only", "Claim Deal", "TechMart"},
	{"ds5", cards.CategoryDealStacker, cards.PriorityLow, "TechMart Deals <news@techmart-deals.com>", "Your Cart Misses You", "Items in your cart are now 15% off", "Not Interested", "TechMart"},

	{"ss1", cards.CategoryStatusSeeker, cards.PriorityCritical, "United Airlines <united@airlines.com>", "Flight Check-in Available - SFO to NYC", "Check in now for tomorrow's 6:45 AM departure, upgrade available", "Check In Now", "United Airlines"},
	{"ss2", cards.CategoryStatusSeeker, cards.PriorityHigh, "Marriott Bonvoy <bonvoy@marriott.com>", "Elite Status Challenge Opportunity", "Fast-track to Platinum status with 10 qualifying stays", "Enroll Now", "Marriott Bonvoy"},

	{"idm1", cards.CategoryIdentityManager, cards.PriorityCritical, "Amazon <security@amazon.com>", "Password Reset Request", "Someone requested a password reset for your account", "Verify Identity", "Amazon"},
	{"idm2", cards.CategoryIdentityManager, cards.PriorityHigh, "PayPal <security@paypal.com>", "New Device Login Detected", "Login from iPhone in San Francisco, CA", "Confirm or Deny", "PayPal"},
}

// Deck returns the demo deck. ss2 comes back snoozed with a snooze that
// elapsed an hour before now, so loading the deck readmits it.
func Deck(now time.Time) []cards.Card {
	out := make([]cards.Card, 0, len(deck))
	for _, e := range deck {
		c := cards.Card{
			ID:       e.id,
			Category: e.category,
			Priority: e.priority,
			State:    cards.StateUnseen,
			Metadata: cards.Metadata{
				From:    e.from,
				Subject: e.subject,
				Summary: e.summary,
				Action:  e.action,
				Attrs:   map[string]string{cards.GroupAttr(e.category): e.attr},
			},
		}
		if e.id == "ss2" {
			until := now.Add(-time.Hour).UTC()
			c.State = cards.StateSnoozed
			c.SnoozeUntil = &until
		}
		out = append(out, c)
	}
	return out
}
