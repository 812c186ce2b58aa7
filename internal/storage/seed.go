package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Seed populates an empty store with the starter attorneys and knowledge
// articles. It is a no-op when either table already has rows.
func Seed(s Store) error {
	attorneys, err := s.ListAttorneys()
	if err != nil {
		return fmt.Errorf("listing attorneys: %w", err)
	}
	if len(attorneys) == 0 {
		for _, a := range seedAttorneys() {
			if err := s.CreateAttorney(a); err != nil {
				return fmt.Errorf("seeding attorney %s: %w", a.Name, err)
			}
		}
	}

	articles, err := s.ListArticles()
	if err != nil {
		return fmt.Errorf("listing articles: %w", err)
	}
	if len(articles) == 0 {
		now := time.Now().UTC()
		for _, a := range seedArticles() {
			a.ID = uuid.NewString()
			a.CreatedAt = now
			a.UpdatedAt = now
			if err := s.CreateArticle(a); err != nil {
				return fmt.Errorf("seeding article %s: %w", a.Slug, err)
			}
		}
	}

	return nil
}

func seedAttorneys() []Attorney {
	return []Attorney{
		{
			ID:           uuid.NewString(),
			Name:         "Sarah Johnson",
			Email:        "sarah.johnson@company.com",
			Title:        "Senior Contracts Attorney",
			Expertise:    []string{"Contracts", "Vendor Agreements", "NDAs"},
			Availability: "available",
		},
		{
			ID:           uuid.NewString(),
			Name:         "Michael Chen",
			Email:        "michael.chen@company.com",
			Title:        "Marketing Counsel",
			Expertise:    []string{"Marketing", "Advertising", "Social Media"},
			Availability: "available",
		},
		{
			ID:           uuid.NewString(),
			Name:         "Jennifer Williams",
			Email:        "jennifer.williams@company.com",
			Title:        "Employment Law Specialist",
			Expertise:    []string{"Employment", "HR", "Labor Law"},
			Availability: "available",
		},
	}
}

func seedArticles() []KnowledgeArticle {
	return []KnowledgeArticle{
		{
			Title: "Standard NDA Template and Usage Guidelines",
			Slug:  "nda-template-guide",
			Content: `# Standard NDA Template and Usage Guidelines

## Pre-Approved Template
Our standard mutual NDA template has been pre-approved for most vendor relationships and partnership discussions.

## When You Can Use It
The standard template is appropriate for:
- Vendor/supplier relationships
- Partnership exploration discussions
- Technology evaluation processes
- Standard business development conversations

## When Legal Review Is Required
Seek legal review if:
- The other party requests significant modifications
- Deal value exceeds $500,000
- Involves highly sensitive IP or trade secrets
- International jurisdiction considerations
- Non-standard confidentiality terms requested

## Key Terms Explained
- **Mutual vs Unilateral**: Our standard is mutual (both parties protect information)
- **Term Length**: Typically 2-3 years from disclosure date
- **Exclusions**: Public information, independently developed, legally required disclosure
- **Return/Destruction**: Obligations upon termination

## Download and Usage
1. Download the template from the knowledge base
2. Fill in party names and dates
3. Ensure both parties sign
4. Store executed copy in contract management system

## Common Modifications
If the other party requests:
- Longer confidentiality period: usually acceptable up to 5 years
- Broader definition of confidential information: requires review
- Non-solicitation clauses: requires legal review
- Exclusivity provisions: requires legal review`,
			Excerpt:      "Download our pre-approved NDA template and learn when you can use it without legal review.",
			Category:     "Contracts",
			Tags:         []string{"NDA", "Templates", "Contracts"},
			ReadTime:     4,
			ViewCount:    521,
			HelpfulCount: 143, NotHelpfulCount: 8,
		},
		{
			Title: "Referential Use of Trademarks in Marketing Content",
			Slug:  "trademark-referential-use",
			Content: `# Referential Use of Trademarks in Marketing Content

## Overview
You can reference competitor names and trademarks in your marketing materials under certain circumstances without obtaining permission. This is known as "referential" or "nominative" use of trademarks.

## When It's Allowed
Referential use is generally permissible when:
1. The product or service cannot be easily identified without using the trademark
2. Only the necessary portion of the trademark is used
3. The use does not suggest sponsorship or endorsement

## Best Practices
- Use competitors' names factually and accurately
- Avoid using their logos or stylized marks
- Include disclaimers when appropriate
- Focus on truthful comparisons
- Don't imply affiliation or endorsement

## Examples
Allowed: "Works with iPhone and Android devices", "Import data from Salesforce", "Faster than leading competitors".

Not allowed: using competitor logos, suggesting partnership when none exists, making false comparative claims.

## When to Seek Review
Contact legal if:
- Making direct comparison claims
- Using competitor trademarks prominently
- Creating parody or critical content
- Unsure about fair use boundaries`,
			Excerpt:      "Learn when and how you can reference competitor names and trademarks in your marketing materials without infringement.",
			Category:     "Marketing",
			Tags:         []string{"Trademarks", "Marketing", "Compliance"},
			ReadTime:     5,
			ViewCount:    342,
			HelpfulCount: 87, NotHelpfulCount: 5,
		},
		{
			Title: "Social Media Contest Legal Requirements",
			Slug:  "social-media-contest-rules",
			Content: `# Social Media Contest Legal Requirements

## Overview
Running contests on social media platforms requires compliance with multiple regulations, platform rules, and state laws.

## Federal Requirements
- **No Purchase Necessary**: Sweepstakes cannot require purchase
- **Official Rules**: Must publish complete terms
- **Disclosures**: Clear explanation of odds, prizes, eligibility
- **Registration**: Some states require contest registration and bonding

## Platform-Specific Rules
Each platform has specific requirements for entry mechanics, eligibility, and mandatory disclaimers. Review the current rules for Instagram, Facebook, Twitter/X, and TikTok before launch.

## Required Disclosures
Your official rules must include:
- No purchase necessary statement
- Eligibility requirements (age, location)
- Entry period (start and end dates)
- How to enter and winner selection
- Prize details and approximate retail value
- Odds of winning
- Winner notification process
- Sponsor information

## State Law Considerations
- New York and Florida require registration for prizes over $5,000
- Some states restrict certain prize types
- Age requirements vary by state
- Consider geographic restrictions

## Best Practices
1. Draft official rules document
2. Host rules on your website
3. Include platform disclaimers
4. Screen winners before announcement
5. Require affidavit of eligibility
6. Document the selection process
7. Fulfill prizes promptly

## When to Seek Legal Review
Always get legal review for:
- Prize value over $5,000
- Alcohol-related prizes
- International participants
- User-generated content contests
- Skill-based competitions
- Influencer partnerships`,
			Excerpt:      "Everything you need to know about running compliant giveaways and contests on social platforms.",
			Category:     "Marketing",
			Tags:         []string{"Social Media", "Contests", "Sweepstakes"},
			ReadTime:     7,
			ViewCount:    289,
			HelpfulCount: 76, NotHelpfulCount: 12,
		},
		{
			Title: "Privacy Policy Updates: GDPR & CCPA Compliance",
			Slug:  "privacy-policy-gdpr-ccpa",
			Content: `# Privacy Policy Updates: GDPR & CCPA Compliance

## Overview
When collecting data from EU and California residents, specific requirements must be met under GDPR and CCPA regulations.

## GDPR Requirements (EU)
The General Data Protection Regulation applies to:
- Businesses with EU operations
- Companies targeting EU residents
- Processing EU resident data

### Key Obligations
- **Lawful Basis**: Identify legal basis for processing
- **Consent**: Explicit consent for certain processing
- **Data Subject Rights**: Right to access, delete, portability
- **Breach Notification**: 72-hour reporting requirement
- **Privacy by Design**: Build privacy into systems

## CCPA Requirements (California)
The California Consumer Privacy Act provides:
- Right to know what data is collected
- Right to deletion
- Right to opt-out of sale
- Right to non-discrimination

### Covered Businesses
CCPA applies if you meet any threshold:
- $25M+ annual revenue
- 100,000+ California consumers/households
- 50%+ revenue from selling consumer data

## Required Privacy Policy Elements
Your policy must disclose:
1. Categories of personal information collected
2. Sources of information
3. Business purposes for collection
4. Categories of third parties receiving data
5. Data retention periods
6. User rights and how to exercise them
7. Contact information for privacy inquiries

## Cookie Consent Requirements
- GDPR requires opt-in consent
- Must explain cookie purposes
- Allow granular consent choices
- Honor "Do Not Track" signals (CCPA)

## Action Items
1. Audit current data collection practices
2. Update privacy policy with required disclosures
3. Implement consent management
4. Create data subject request process
5. Review vendor contracts
6. Train staff on privacy obligations`,
			Excerpt:      "Key requirements for privacy policies when collecting data from EU and California residents.",
			Category:     "Privacy",
			Tags:         []string{"Privacy", "GDPR", "CCPA", "Data Protection"},
			ReadTime:     8,
			ViewCount:    412,
			HelpfulCount: 95, NotHelpfulCount: 7,
		},
		{
			Title: "Social Media and External Communications Policy",
			Slug:  "social-media-policy",
			Content: `# Social Media and External Communications Policy

## 1. Purpose and Scope
This policy establishes mandatory requirements for all employees, contractors, and consultants regarding public statements about their employment and the company.

### Applies to:
- Social media platforms
- Personal websites and blogs
- Podcasts and public forums
- Professional networking sites (LinkedIn, etc.)
- Media interviews and conference presentations

## 2. Permitted Statements
You may confirm your employment with the company. LinkedIn profiles may list the company name and current employment status, but no description of duties without approval.

## 3. Prohibited Disclosures
You cannot publicly disclose:
- Company strategies, plans, or operations
- Clients, partners, or business relationships
- Financial information
- Proprietary or confidential information
- Speculation about company plans

You shall not post photos or videos from company facilities, share screenshots or documents, or use company logos without authorization.

## 4. Authorization Requirements
Prior written approval is required for:
- Public speaking where employment may be referenced
- Industry conferences or panels
- Publications or blogs referencing employment
- Media interviews or press statements

## 5. Protected Activities
This policy does not interfere with:
- Rights to discuss wages and hours with other employees
- Protected concerted activity
- Lawful subpoenas or court orders
- Reporting illegal activity to authorities

## 6. Compliance
- Annual recertification required
- Report any inadvertent disclosure within 24 hours
- When in doubt, seek written clarification from the legal department`,
			Excerpt:      "Mandatory policy regarding what employees can and cannot say publicly about their employment and the company.",
			Category:     "Compliance",
			Tags:         []string{"Social Media", "Policy", "Compliance", "Communications"},
			ReadTime:     10,
			ViewCount:    0,
			HelpfulCount: 0, NotHelpfulCount: 0,
		},
	}
}
