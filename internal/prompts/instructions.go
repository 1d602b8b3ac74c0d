package prompts

const nameInstructions = `Build a standardized catalog name for the product described below.

Assemble the name from these parts, in order:
1. Brand, taken from the vendor information
2. The core product name
3. Size, dimensions, or pack quantity
4. Three or four of the most important specifications

Use the layout: [Brand] [Product Name] [Size] - [Key Specs]

Example: 3M VFlex N95 Medical Respirator Mask - One Size - 50/Box - NIOSH Approved`

const summaryInstructions = `Write an "About this Product" summary for the product described below.

- Begin with the line "About this Product" followed by one blank line
- Follow with four to six bullet points, each starting with "•"
- Draw the bullets from the features and benefits and from the descriptions
- Keep every bullet short and factual
- Lead with what distinguishes the product

Example:
About this Product

• McKesson Confiderm 3.5C Nitrile Exam Gloves, Small
• Powder-Free
• Tested for use with chemotherapy drugs per ASTM D6978-05
• Textured fingertips for tactile sensitivity`

const descriptionInstructions = `Produce a specification table for the product described below.

- Use only <table>, <tr>, <th>, and <td> elements
- One specification per row: the attribute in <th>, its value in <td>
- Prefer attributes such as Brand, Size, Material, Color, Packaging, and Certifications
- Take values only from the product information
- Keep the table to the five to eight most useful rows

Example:
<table><tr><th>Brand</th><td>McKesson</td></tr><tr><th>Powder-Free</th><td>Yes</td></tr><tr><th>Size</th><td>Small</td></tr></table>`

const keywordsInstructions = `Generate search keywords for the product described below.

Cover a mix of:
- Product type and category terms
- Brand and manufacturer names, including the brand on its own
- Technical specifications and features
- Use cases and applications
- Industry terminology and common buyer search phrases

Blend broad and specific terms. Avoid duplicates and near-duplicates.`

const categoryInstructions = `Assign the product described below to the best fitting category.

- Study the product type, description, and features
- Choose exactly one main category from the available categories
- Choose one or more subcategories listed under that main category
- Use names exactly as they appear in the available categories
- When nothing fits perfectly, choose the closest category`

const taxCodeInstructions = `Choose the tax code that best fits the product described below.

- Compare the product's type, description, and intended use with each candidate
- Weigh regulatory classification and industry conventions
- Select one candidate code
- Rate your confidence from 0.0 to 1.0 and explain the choice`

const contentInstructions = `Generate the complete catalog content for the product described below in one pass.

Name pattern: [Brand] [Product Name] [Size] - [Key Specs], using three or four key specifications.

Summary: the line "About this Product", a blank line, then four to six "•" bullets drawn from the features and descriptions.

Description: a specification table using only <table>, <tr>, <th>, and <td>, five to eight rows, values taken from the product information.

Keywords: a mix of product type, brand, specification, use case, and buyer search terms without duplicates.`

const classifyInstructions = `Classify the product described below by catalog category and by tax code.

Category: choose one main category and one or more of its subcategories, using names exactly as they appear in the available categories.

Tax code: compare the product with each retrieved candidate, select one candidate code, and rate your confidence from 0.0 to 1.0. Consider the product's keywords as supporting evidence.`

var instructions = map[Stage]string{
	StageName:        nameInstructions,
	StageSummary:     summaryInstructions,
	StageDescription: descriptionInstructions,
	StageKeywords:    keywordsInstructions,
	StageCategory:    categoryInstructions,
	StageTaxCode:     taxCodeInstructions,
	StageContent:     contentInstructions,
	StageClassify:    classifyInstructions,
}

// Instructions returns the built-in default instructions for a stage.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

var roles = map[Stage]string{
	StageName:        "You are a product naming expert.",
	StageSummary:     "You are a product documentation specialist.",
	StageDescription: "You are a product documentation specialist.",
	StageKeywords:    "You are a product SEO expert. Always return valid JSON.",
	StageCategory:    "You are a product categorization expert. Always return valid JSON.",
	StageTaxCode:     "You are a tax classification expert. Always return valid JSON.",
	StageContent:     "You are a product content generation expert.",
	StageClassify:    "You are a medical product classification expert.",
}

// Role returns the fixed system role for a stage.
func Role(stage Stage) (string, error) {
	text, ok := roles[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
